package reminders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudkit-tools/reminders.go/pkg/models"
)

// listColor is a symbolic color plus the hex value the service's own
// clients store alongside it.
type listColor struct {
	Symbolic string `json:"ckSymbolicColorName"`
	Hex      string `json:"daHexString"`
}

var listColors = map[string]listColor{
	"blue":   {"blue", "#007AFF"},
	"red":    {"red", "#FF3B30"},
	"green":  {"green", "#34C759"},
	"orange": {"orange", "#FF9500"},
	"purple": {"purple", "#AF52DE"},
	"yellow": {"yellow", "#FFCC00"},
}

// CreateList creates a reminder list, optionally nested under a parent
// group. Unknown colors fall back to blue.
func (c *Client) CreateList(ctx context.Context, name, color, parentName string) (*ListOutcome, error) {
	if name == "" {
		return nil, fmt.Errorf("reminders: list name is required")
	}
	col, ok := listColors[color]
	if !ok {
		color = "blue"
		col = listColors[color]
	}
	colorBlob, _ := json.Marshal(col)

	rec := models.Record{
		RecordName: models.NewRecordName(models.TypeList),
		RecordType: models.TypeList,
		Fields: map[string]models.FieldValue{
			"Name":     models.String(name),
			"Color":    models.String(string(colorBlob)),
			"Deleted":  models.Int64(0),
			"Imported": models.Int64(0),
		},
	}
	if parentName != "" {
		parent, ok := c.ListByName(parentName)
		if !ok {
			return nil, &NotFoundError{What: fmt.Sprintf("list %q", parentName)}
		}
		rec.SetField("ParentList", models.Ref(parent.ID, c.zone, models.ActionNone))
	}

	if err := c.modifyOne(ctx, models.OpCreate, rec); err != nil {
		return nil, err
	}
	return &ListOutcome{ID: rec.RecordName, Name: name, Color: color}, nil
}
