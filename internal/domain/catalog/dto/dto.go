package dto

import (
	"github.com/Aztech-1729/sliptads/internal/domain/catalog/entities"
)

// ToggleRequest selects or unselects one destination
type ToggleRequest struct {
	DisplayID string `json:"display_id"`
	Page      int    `json:"page"`
}

// FilterRequest sets the title search filter
type FilterRequest struct {
	Filter string `json:"filter"`
}

// BulkRequest selects or unselects every matching destination of a kind
type BulkRequest struct {
	Kind string `json:"kind"` // group, topic or all
}

// JoinRequest lists chats to join, separated by commas, pipes or newlines
type JoinRequest struct {
	Targets string `json:"targets"`
}

// JoinResultResponse is the outcome for one pasted target
type JoinResultResponse struct {
	Target    string `json:"target"`
	Status    string `json:"status"`
	Title     string `json:"title,omitempty"`
	DisplayID string `json:"display_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// JoinResponse summarizes a join batch
type JoinResponse struct {
	Results []JoinResultResponse `json:"results"`
	Joined  int                  `json:"joined"`
	Failed  int                  `json:"failed"`
	Aborted bool                 `json:"aborted"`
}

// DestinationResponse is one catalog row
type DestinationResponse struct {
	DisplayID   string `json:"display_id"`
	Title       string `json:"title"`
	Kind        string `json:"kind"`
	Pinned      bool   `json:"pinned"`
	Selected    bool   `json:"selected"`
	ParentTitle string `json:"parent_title,omitempty"`
}

// PageResponse is one page of the catalog
type PageResponse struct {
	Items    []DestinationResponse `json:"items"`
	Page     int                   `json:"page"`
	Pages    int                   `json:"pages"`
	Total    int                   `json:"total"`
	Selected int                   `json:"selected"`
	Filter   string                `json:"filter,omitempty"`
}

// TargetsResponse lists the confirmed targets
type TargetsResponse struct {
	Targets []string `json:"targets"`
	Count   int      `json:"count"`
}

// NewPageResponse converts a catalog page
func NewPageResponse(p *entities.Page) PageResponse {
	items := make([]DestinationResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, DestinationResponse{
			DisplayID:   it.DisplayID,
			Title:       it.Title,
			Kind:        string(it.Kind),
			Pinned:      it.Pinned,
			Selected:    it.Selected,
			ParentTitle: it.ParentTitle,
		})
	}
	return PageResponse{
		Items:    items,
		Page:     p.Page,
		Pages:    p.Pages,
		Total:    p.Total,
		Selected: p.Selected,
		Filter:   p.Filter,
	}
}

// NewJoinResponse converts a join report
func NewJoinResponse(r *entities.JoinReport) JoinResponse {
	results := make([]JoinResultResponse, 0, len(r.Results))
	for _, res := range r.Results {
		results = append(results, JoinResultResponse{
			Target:    res.Target,
			Status:    string(res.Status),
			Title:     res.Title,
			DisplayID: res.DisplayID,
			Reason:    res.Reason,
		})
	}
	return JoinResponse{
		Results: results,
		Joined:  r.Count(entities.JoinJoined),
		Failed:  r.Count(entities.JoinFailed),
		Aborted: r.Aborted,
	}
}
