package normalizer

import "github.com/SmooSenseAI/itrade/src/utils"

// ExtractPreviewID reads PreviewOrderResponse.PreviewIds.previewId. PreviewIds
// may be an object or a list; the first entry carrying an id wins.
func ExtractPreviewID(raw Raw) (int64, bool) {
	previewIds := getMap(raw, "PreviewOrderResponse")["PreviewIds"]
	for _, entry := range ensureObjects(previewIds) {
		if id, ok := utils.ToInt64(entry["previewId"]); ok {
			return id, true
		}
	}

	return 0, false
}
