package transfer

func app(title, url string) AppItem {
	return AppItem{Type: ItemApp, Title: title, URL: url}
}

func folder(title string, children ...AppItem) AppItem {
	return AppItem{Type: ItemFolder, Title: title, Children: children}
}

func space(name string, apps ...AppItem) SpacePayload {
	if apps == nil {
		apps = []AppItem{}
	}
	return SpacePayload{Name: name, IconType: "emoji", Apps: apps}
}

func singleExport(version *int, s SpacePayload) *SpaceExportData {
	return &SpaceExportData{
		Version:       ExportVersion,
		SchemaVersion: version,
		Type:          TypeSingleSpace,
		Data:          s,
	}
}

func multiExport(version *int, spaces ...SpacePayload) *MultiSpaceExportData {
	return &MultiSpaceExportData{
		Version:       ExportVersion,
		SchemaVersion: version,
		Type:          TypeMultiSpace,
		Data:          MultiSpaceData{Spaces: spaces},
	}
}

func liveSpaces(names ...string) []Space {
	out := make([]Space, len(names))
	for i, n := range names {
		out[i] = Space{ID: "live-" + n, Name: n, IconType: "emoji", Apps: []AppItem{}}
	}
	return out
}

func nested(depth int) []AppItem {
	items := []AppItem{app("leaf", "https://example.com")}
	for i := 1; i < depth; i++ {
		items = []AppItem{folder("f", items...)}
	}
	return items
}
