package syncdb

import (
	"github.com/newguy103/passvault-client/internal/models"
	"github.com/newguy103/passvault-client/internal/remote"
)

// Converters from wire DTOs to domain models. The remote projection is what
// reads return to callers when sync is active, so these keep the two shapes
// strictly aligned.

func groupFromModify(g *remote.GroupModify) models.Group {
	return models.Group{
		GroupID:   g.GroupID,
		GroupName: g.GroupName,
		ParentID:  g.ParentID,
		IsRoot:    g.ParentID == nil,
	}
}

func groupFromGet(g *remote.GroupGet) *models.GroupWithChildren {
	children := make([]models.Group, 0, len(g.ChildGroups))
	for _, c := range g.ChildGroups {
		children = append(children, models.Group{
			GroupID:   c.GroupID,
			GroupName: c.GroupName,
			ParentID:  c.ParentID,
		})
	}
	return &models.GroupWithChildren{
		Group: models.Group{
			GroupID:   g.GroupID,
			GroupName: g.GroupName,
			ParentID:  g.ParentID,
			IsRoot:    g.ParentID == nil,
		},
		Children: children,
	}
}

func entryFromGet(e *remote.EntryGet) models.Entry {
	out := models.Entry{
		EntryID:   e.EntryID,
		GroupID:   e.GroupID,
		Title:     e.Title,
		Username:  e.Username,
		Password:  e.Password,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
	}
	if e.URL != nil {
		out.URL = *e.URL
	}
	return out
}

func entriesFromGet(list []remote.EntryGet) []models.Entry {
	out := make([]models.Entry, 0, len(list))
	for i := range list {
		out = append(out, entryFromGet(&list[i]))
	}
	return out
}

func payloadFromFields(f models.EntryFields) remote.EntryPayload {
	body := remote.EntryPayload{
		Title:    f.Title,
		Username: f.Username,
		Password: f.Password,
		Notes:    f.Notes,
	}
	if f.URL != "" {
		u := f.URL
		body.URL = &u
	}
	return body
}
