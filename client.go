package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudkit-tools/reminders.go/pkg/connection"
	"github.com/cloudkit-tools/reminders.go/pkg/logger"
	"github.com/cloudkit-tools/reminders.go/pkg/models"
)

// The reminders container paths. The paths are protocol contract.
const (
	basePath      = "/database/1/com.apple.reminders/production/private"
	pathZonesList = basePath + "/zones/list"
	pathChanges   = basePath + "/records/changes"
	pathModify    = basePath + "/records/modify"

	zoneName = "Reminders"
)

// Config configures a Client.
type Config struct {
	// Transport is the authenticated session the client runs on.
	Transport connection.Transport
	// Logger is optional; the default discards everything.
	Logger *zerolog.Logger
	// Timezone is the IANA zone used for alarm date components and the
	// TimeZone field of timed reminders. Defaults to UTC.
	Timezone string
}

// Client is a handle on one Reminders zone. It owns the in-memory
// snapshot cache exclusively; the cache is rebuilt wholesale by Refresh
// and never patched in place. A Client is not safe for concurrent use.
type Client struct {
	tx     connection.Transport
	log    zerolog.Logger
	loc    *time.Location
	tzName string

	zone    models.ZoneID
	records []models.Record
	byType  map[string][]models.Record

	now func() time.Time
}

// New builds a Client. No network calls are made until Connect.
func New(cfg Config) (*Client, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("reminders: transport is required")
	}

	log := logger.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	tzName := cfg.Timezone
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("reminders: load timezone %q: %w", tzName, err)
	}

	return &Client{
		tx:     cfg.Transport,
		log:    log,
		loc:    loc,
		tzName: tzName,
		now:    time.Now,
	}, nil
}

// Connect resolves the Reminders zone. The owner record name is
// account-specific and must be fetched; the zone is then cached for the
// client's lifetime.
func (c *Client) Connect(ctx context.Context) error {
	var resp models.ZonesResponse
	if err := c.tx.Post(ctx, pathZonesList, map[string]any{}, &resp); err != nil {
		return err
	}
	for _, z := range resp.Zones {
		if z.ZoneID.ZoneName == zoneName {
			c.zone = z.ZoneID
			c.log.Debug().Str("owner", c.zone.OwnerRecordName).Msg("resolved reminders zone")
			return nil
		}
	}
	return &NotFoundError{What: fmt.Sprintf("zone %q", zoneName)}
}

// Zone returns the resolved zone identifier.
func (c *Client) Zone() models.ZoneID { return c.zone }

func (c *Client) nowMillis() int64 {
	return c.now().UnixMilli()
}
