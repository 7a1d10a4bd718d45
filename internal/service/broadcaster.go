package service

import "formsapi/internal/model"

// Broadcaster pushes new results to live subscribers (avoids import cycle
// with the ws package)
type Broadcaster interface {
	BroadcastResult(formID string, result *model.ExpandedResult)
}
