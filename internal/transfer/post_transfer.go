package transfer

import (
	"encoding/json"
	"time"
)

type PostCreation struct {
	VideoKey      string   `json:"videoKey" validate:"required"`
	VideoFilename string   `json:"videoFilename"`
	Caption       *string  `json:"caption"`
	Platforms     []string `json:"platforms" validate:"required"`
}

// PostUpdate distinguishes a field that was absent from one explicitly set
// to null: clearing scheduledFor reverts a post to draft, so presence
// matters.
type PostUpdate struct {
	Caption      *string
	ScheduledFor *time.Time

	HasCaption      bool
	HasScheduledFor bool
}

func (u *PostUpdate) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["caption"]; ok {
		u.HasCaption = true
		if err := json.Unmarshal(raw, &u.Caption); err != nil {
			return err
		}
	}

	if raw, ok := fields["scheduledFor"]; ok {
		u.HasScheduledFor = true
		if err := json.Unmarshal(raw, &u.ScheduledFor); err != nil {
			return err
		}
	}

	return nil
}
