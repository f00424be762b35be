package transfer

import "fmt"

// BuildPreview computes how payload would land next to existing.
//
// Names are resolved in payload order against the live names and the names
// already assigned earlier in the same pass; a taken name gets " (n)" with the
// smallest free n starting at 1. The function never mutates its inputs.
func BuildPreview(payload ImportPayload, existing []Space) Preview {
	spaces := payload.Spaces()

	taken := make(map[string]struct{}, len(existing)+len(spaces))
	for _, s := range existing {
		taken[s.Name] = struct{}{}
	}

	preview := Preview{
		IncomingSpaces: len(spaces),
		SelectedSpaces: len(spaces),
		Items:          make([]PreviewItem, 0, len(spaces)),
	}

	for _, space := range spaces {
		finalName := resolveName(space.Name, taken)
		taken[finalName] = struct{}{}

		count := CountAppItems(space.Apps)
		item := PreviewItem{
			OriginalName: space.Name,
			FinalName:    finalName,
			AppItemCount: count,
		}
		if item.Renamed() {
			preview.NameConflicts++
		}
		preview.TotalAppItems += count
		preview.Items = append(preview.Items, item)
	}

	return preview
}

func resolveName(name string, taken map[string]struct{}) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// CountAppItems counts every item transitively; a folder counts itself plus
// its children. Nesting beyond MaxItemDepth is not descended into.
func CountAppItems(items []AppItem) int {
	return countItems(items, 1)
}

func countItems(items []AppItem, depth int) int {
	if depth > MaxItemDepth {
		return 0
	}
	total := 0
	for _, item := range items {
		total++
		if item.Type == ItemFolder {
			total += countItems(item.Children, depth+1)
		}
	}
	return total
}
