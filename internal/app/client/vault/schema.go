package vault

import "cogniflow/internal/infrastructure/storage/objectstore"

// Collection names inside the embedded store.
const (
	ColUsers     = "users"
	ColProfiles  = "profiles"
	ColItems     = "items"
	ColSettings  = "settings"
	ColTemplates = "templates"
)

// Schemas declares every embedded collection. The same set must be used by
// whoever opens the store so the snapshot manager exports all of them.
func Schemas() []objectstore.Schema {
	return []objectstore.Schema{
		{
			Name: ColUsers,
			Key:  "id",
			Indices: []objectstore.Index{
				{Name: "username", Field: "username", Unique: true},
			},
		},
		{
			Name: ColProfiles,
			Key:  "id",
			Indices: []objectstore.Index{
				{Name: "email", Field: "email"},
				{Name: "phone", Field: "phone"},
			},
		},
		{
			Name: ColItems,
			Key:  "id",
			Indices: []objectstore.Index{
				{Name: "user_id", Field: "user_id"},
				{Name: "type", Field: "type"},
				{Name: "status", Field: "status"},
			},
		},
		{
			Name: ColSettings,
			Key:  "user_id",
		},
		{
			Name: ColTemplates,
			Key:  "id",
			Indices: []objectstore.Index{
				{Name: "user_id", Field: "user_id"},
			},
		},
	}
}
