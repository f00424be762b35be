package transfer

import "fmt"

// schemaUpgrades[v] upgrades a space payload from schema v to v+1.
// Version 1 only introduced the schemaVersion field itself.
var schemaUpgrades = [CurrentSchemaVersion]func(*SpacePayload){
	0: func(*SpacePayload) {},
}

// NormalizeSingle upgrades a single-space export to CurrentSchemaVersion.
// The input is not modified; the result is a deep copy.
func NormalizeSingle(in *SpaceExportData) (*SpaceExportData, error) {
	if in == nil {
		return nil, invalidPayload("missing export")
	}
	if canonicalType(in.Type) != TypeSingleSpace {
		return nil, invalidPayload("type %q is not a single-space export", in.Type)
	}

	version, err := resolveSchemaVersion(in.SchemaVersion)
	if err != nil {
		return nil, err
	}

	out := &SpaceExportData{
		Version: in.Version,
		Type:    TypeSingleSpace,
		Data:    cloneSpace(in.Data),
	}
	if out.Version == "" {
		out.Version = ExportVersion
	}

	for v := version; v < CurrentSchemaVersion; v++ {
		schemaUpgrades[v](&out.Data)
	}

	if err := validateSpace(out.Data, "data"); err != nil {
		return nil, err
	}

	out.SchemaVersion = intPtr(CurrentSchemaVersion)
	return out, nil
}

// NormalizeMulti upgrades a multi-space export to CurrentSchemaVersion.
// The input is not modified; the result is a deep copy.
func NormalizeMulti(in *MultiSpaceExportData) (*MultiSpaceExportData, error) {
	if in == nil {
		return nil, invalidPayload("missing export")
	}
	if canonicalType(in.Type) != TypeMultiSpace {
		return nil, invalidPayload("type %q is not a multi-space export", in.Type)
	}
	if in.Data.Spaces == nil {
		return nil, invalidPayload("data.spaces is missing")
	}

	version, err := resolveSchemaVersion(in.SchemaVersion)
	if err != nil {
		return nil, err
	}

	out := &MultiSpaceExportData{
		Version: in.Version,
		Type:    TypeMultiSpace,
		Data:    MultiSpaceData{Spaces: make([]SpacePayload, len(in.Data.Spaces))},
	}
	if out.Version == "" {
		out.Version = ExportVersion
	}

	for i, space := range in.Data.Spaces {
		out.Data.Spaces[i] = cloneSpace(space)
		for v := version; v < CurrentSchemaVersion; v++ {
			schemaUpgrades[v](&out.Data.Spaces[i])
		}
		if err := validateSpace(out.Data.Spaces[i], fmt.Sprintf("data.spaces[%d]", i)); err != nil {
			return nil, err
		}
	}

	out.SchemaVersion = intPtr(CurrentSchemaVersion)
	return out, nil
}

// Normalize dispatches on the payload kind.
func Normalize(p ImportPayload) (ImportPayload, error) {
	switch p.Kind {
	case KindSingle:
		single, err := NormalizeSingle(p.Single)
		if err != nil {
			return ImportPayload{}, err
		}
		return SinglePayload(single), nil
	case KindMulti:
		multi, err := NormalizeMulti(p.Multi)
		if err != nil {
			return ImportPayload{}, err
		}
		return MultiPayload(multi), nil
	default:
		return ImportPayload{}, invalidPayload("unknown payload kind %q", p.Kind)
	}
}

func resolveSchemaVersion(v *int) (int, error) {
	if v == nil {
		return LegacySchemaVersion, nil
	}
	switch {
	case *v < 0:
		return 0, invalidPayload("negative schemaVersion %d", *v)
	case *v > CurrentSchemaVersion:
		return 0, &UnsupportedSchemaVersionError{Got: *v, Current: CurrentSchemaVersion}
	}
	return *v, nil
}

func canonicalType(t ExportType) ExportType {
	switch t {
	case TypeSingleSpace, typeSingleSpaceAlias:
		return TypeSingleSpace
	case TypeMultiSpace, typeMultiSpaceAlias:
		return TypeMultiSpace
	default:
		return t
	}
}

func validateSpace(space SpacePayload, path string) error {
	return validateItems(space.Apps, path+".apps", 1)
}

func validateItems(items []AppItem, path string, depth int) error {
	if depth > MaxItemDepth {
		return fmt.Errorf("%w: %s exceeds depth %d", ErrItemTooDeep, path, MaxItemDepth)
	}
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		switch item.Type {
		case ItemApp:
		case ItemFolder:
			if err := validateItems(item.Children, itemPath+".children", depth+1); err != nil {
				return err
			}
		default:
			return invalidPayload("%s has unknown item type %q", itemPath, item.Type)
		}
	}
	return nil
}

func cloneSpace(s SpacePayload) SpacePayload {
	return SpacePayload{
		Name:     s.Name,
		IconType: s.IconType,
		Apps:     cloneItems(s.Apps, 1),
	}
}

// cloneItems copies items; nil becomes an empty slice at the top level so
// exports always carry "apps": [].
func cloneItems(items []AppItem, depth int) []AppItem {
	out := make([]AppItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.Children != nil && depth < MaxItemDepth+1 {
			out[i].Children = cloneItems(item.Children, depth+1)
		}
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
