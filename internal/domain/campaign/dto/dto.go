package dto

import (
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
)

// CustomRequest sets a custom message source
type CustomRequest struct {
	Text      string `json:"text"`
	MediaPath string `json:"media_path"`
	MediaKind string `json:"media_kind"`
}

// SavedRequest sets the newest saved message as the source
type SavedRequest struct {
	AsCopy bool `json:"as_copy"`
}

// PostLinkRequest sets a post link as the source
type PostLinkRequest struct {
	Link string `json:"link"`
}

// FallbackRequest sets the fallback text
type FallbackRequest struct {
	Text string `json:"text"`
}

// TimingRequest sets the delays, in seconds
type TimingRequest struct {
	RoundDelaySeconds int     `json:"round_delay_seconds"`
	SendGapSeconds    float64 `json:"send_gap_seconds"`
}

// CampaignResponse is the public view of the ad configuration
type CampaignResponse struct {
	Source            string   `json:"source"`
	Text              string   `json:"text,omitempty"`
	MediaPath         string   `json:"media_path,omitempty"`
	MediaKind         string   `json:"media_kind,omitempty"`
	SourcePeer        string   `json:"source_peer,omitempty"`
	MessageID         int      `json:"message_id,omitempty"`
	PostLink          string   `json:"post_link,omitempty"`
	Fallback          string   `json:"fallback,omitempty"`
	RoundDelaySeconds int      `json:"round_delay_seconds"`
	SendGapSeconds    float64  `json:"send_gap_seconds"`
	Targets           []string `json:"targets"`
	Locked            bool     `json:"locked"`
	Ready             bool     `json:"ready"`
	Missing           string   `json:"missing,omitempty"`
}

// NewCampaignResponse converts the ad configuration
func NewCampaignResponse(ad *sessionentities.AdConfig) CampaignResponse {
	missing := ad.Missing()
	targets := ad.Targets
	if targets == nil {
		targets = []string{}
	}
	return CampaignResponse{
		Source:            string(ad.Source),
		Text:              ad.Text,
		MediaPath:         ad.MediaPath,
		MediaKind:         ad.MediaKind,
		SourcePeer:        ad.SourcePeer,
		MessageID:         ad.MessageID,
		PostLink:          ad.PostLink,
		Fallback:          ad.Fallback,
		RoundDelaySeconds: int(ad.RoundDelay.Seconds()),
		SendGapSeconds:    ad.SendGap.Seconds(),
		Targets:           targets,
		Locked:            ad.Locked,
		Ready:             missing == "",
		Missing:           missing,
	}
}
