package transfer

// Pick returns a bundle holding only the spaces at indices, in the order given.
// Envelope fields are carried over unchanged. Indices outside the bundle are
// ignored; an empty result is ErrNoSpacesSelected.
func Pick(multi *MultiSpaceExportData, indices []int) (*MultiSpaceExportData, error) {
	if multi == nil {
		return nil, ErrNoSpacesSelected
	}

	spaces := make([]SpacePayload, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(multi.Data.Spaces) {
			continue
		}
		spaces = append(spaces, cloneSpace(multi.Data.Spaces[idx]))
	}
	if len(spaces) == 0 {
		return nil, ErrNoSpacesSelected
	}

	out := &MultiSpaceExportData{
		Version: multi.Version,
		Type:    multi.Type,
		Data:    MultiSpaceData{Spaces: spaces},
	}
	if multi.SchemaVersion != nil {
		out.SchemaVersion = intPtr(*multi.SchemaVersion)
	}
	return out, nil
}

// PickSelection parses selection against the bundle and picks the result.
func PickSelection(multi *MultiSpaceExportData, selection string) (*MultiSpaceExportData, error) {
	if multi == nil {
		return nil, ErrNoSpacesSelected
	}
	indices, err := ParseSelection(selection, len(multi.Data.Spaces))
	if err != nil {
		return nil, err
	}
	return Pick(multi, indices)
}
