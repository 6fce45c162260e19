package model

import "time"

// DefaultSystem is stored when a project is saved without a system selector.
const DefaultSystem = "both"

// Project is a saved booth calculation owned by exactly one user.  The
// JSON shape matches what the calculator client posts and reads back.
//
// Fields:
//
//	ID          – primary key identifier.
//	UserID      – owning user; every query is scoped by it.
//	Projektname – project name.
//	Breite      – booth width in metres (nullable).
//	Tiefe       – booth depth in metres (nullable).
//	Hoehe       – booth height in metres (nullable).
//	System      – which catalogs are in play (aluvision, pixlip, both).
//	Data        – line-item payload, stored as JSON text.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – refreshed on every update.
type Project struct {
	ID          uint64    `json:"id"`           // projects.id
	UserID      uint64    `json:"user_id"`      // projects.user_id
	Projektname string    `json:"projektname"`  // projects.projektname
	Breite      *float64  `json:"breite"`       // projects.breite
	Tiefe       *float64  `json:"tiefe"`        // projects.tiefe
	Hoehe       *float64  `json:"hoehe"`        // projects.hoehe
	System      string    `json:"system"`       // projects.system
	Data        Payload   `json:"data"`         // projects.data
	CreatedAt   time.Time `json:"created_at"`   // projects.created_at
	UpdatedAt   time.Time `json:"updated_at"`   // projects.updated_at
}
