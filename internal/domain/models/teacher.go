package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Teacher is a record in the identity directory. Profile management
// lives in a separate service; this core only resolves and searches
// identities. Blocked gates login, which is also external, so a
// blocked teacher still resolves as a valid share target.
type Teacher struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Nom       string             `bson:"nom,omitempty" json:"nom,omitempty"`
	Prenom    string             `bson:"prenom,omitempty" json:"prenom,omitempty"`
	Blocked   bool               `bson:"blocked,omitempty" json:"blocked,omitempty"`
	CreatedAt time.Time          `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}

// DisplayName returns "Prenom Nom" when available, else the email.
func (t *Teacher) DisplayName() string {
	switch {
	case t.Prenom != "" && t.Nom != "":
		return t.Prenom + " " + t.Nom
	case t.Nom != "":
		return t.Nom
	case t.Prenom != "":
		return t.Prenom
	default:
		return t.Email
	}
}
