package services

import (
	"errors"
	"fmt"
	"strings"

	"stormbringer/internal/campaign/models"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/timestamp"
)

// ErrIntegrity is returned for a stored campaign that lacks required fields.
// It is distinct from not-found.
var ErrIntegrity = errors.New("campaign document failed integrity check")

// campaignFields is the stored shape of c, without its id
func campaignFields(c *models.Campaign) map[string]any {
	chats := make([]any, len(c.Chats))
	for i := range c.Chats {
		chats[i] = chatFields(c.Chats[i])
	}
	playerCharacters := make(map[string]any, len(c.PlayerCharacters))
	for k, v := range c.PlayerCharacters {
		playerCharacters[k] = v
	}

	fields := map[string]any{
		"name":             c.Name,
		"description":      c.Description,
		"dmId":             c.DMID,
		"players":          stringsToAny(c.Players),
		"status":           string(c.Status),
		"createdAt":        c.CreatedAt,
		"updatedAt":        c.UpdatedAt,
		"nextSessionDate":  nil,
		"files":            stringsToAny(c.Files),
		"chats":            chats,
		"accessLink":       c.AccessLink,
		"playerCharacters": playerCharacters,
		"lastReminderAt":   nil,
	}
	if c.NextSessionDate != nil {
		fields["nextSessionDate"] = *c.NextSessionDate
	}
	if c.LastReminderAt != nil {
		fields["lastReminderAt"] = *c.LastReminderAt
	}
	return fields
}

func chatFields(m models.ChatMessage) map[string]any {
	return map[string]any{
		"id":        m.ID,
		"userId":    m.UserID,
		"userName":  m.UserName,
		"text":      m.Text,
		"timestamp": m.Timestamp,
	}
}

// decodeCampaign reads a campaign from a stored or cached field map. Every
// point in time may be a native time, a store date or the plain
// {seconds, nanoseconds} shape.
func decodeCampaign(id string, fields map[string]any) (*models.Campaign, error) {
	var missing []string
	if _, ok := fields["name"].(string); !ok {
		missing = append(missing, "name")
	}
	if dm, _ := fields["dmId"].(string); dm == "" {
		missing = append(missing, "dmId")
	}
	if _, ok := docstore.Slice(fields, "players"); !ok {
		missing = append(missing, "players")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: campaign %s missing %s", ErrIntegrity, id, strings.Join(missing, ", "))
	}

	c := &models.Campaign{
		ID:               id,
		Name:             docstore.String(fields, "name"),
		Description:      docstore.String(fields, "description"),
		DMID:             docstore.String(fields, "dmId"),
		Players:          docstore.StringSlice(fields, "players"),
		Status:           models.Status(docstore.String(fields, "status")),
		NextSessionDate:  timestamp.ParsePtr(fields["nextSessionDate"]),
		Files:            docstore.StringSlice(fields, "files"),
		AccessLink:       docstore.String(fields, "accessLink"),
		PlayerCharacters: docstore.StringMap(fields, "playerCharacters"),
		LastReminderAt:   timestamp.ParsePtr(fields["lastReminderAt"]),
	}
	if !c.Status.Valid() {
		c.Status = models.StatusActive
	}
	c.CreatedAt, _ = timestamp.Parse(fields["createdAt"])
	c.UpdatedAt, _ = timestamp.Parse(fields["updatedAt"])
	if c.Files == nil {
		c.Files = []string{}
	}
	if c.PlayerCharacters == nil {
		c.PlayerCharacters = map[string]string{}
	}

	c.Chats = []models.ChatMessage{}
	if items, ok := docstore.Slice(fields, "chats"); ok {
		for _, item := range items {
			m, ok := docstore.AsMap(item)
			if !ok {
				continue
			}
			ts, _ := timestamp.Parse(m["timestamp"])
			c.Chats = append(c.Chats, models.ChatMessage{
				ID:        docstore.String(m, "id"),
				UserID:    docstore.String(m, "userId"),
				UserName:  docstore.String(m, "userName"),
				Text:      docstore.String(m, "text"),
				Timestamp: ts,
			})
		}
	}
	return c, nil
}

// cacheRecord is the session-cache shape of c: its fields plus id, with
// every timestamp rewritten to the plain shape
func cacheRecord(c *models.Campaign) map[string]any {
	record, _ := timestamp.Normalize(campaignFields(c)).(map[string]any)
	record["id"] = c.ID
	return record
}

func fromCacheRecord(record map[string]any) (*models.Campaign, error) {
	return decodeCampaign(docstore.String(record, "id"), record)
}

func stringsToAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
