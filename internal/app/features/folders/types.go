package folders

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type createRequest struct {
	Name string `json:"name"`
}

func (p createRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 255)),
	)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (p renameRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 255)),
	)
}

type shareAdd struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Role is normalized downstream: anything but "edit" grants view.
func (p shareAdd) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

type shareRequest struct {
	Add    []shareAdd `json:"add"`
	Remove []string   `json:"remove"`
}

func (p shareRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Add),
		validation.Field(&p.Remove, validation.Each(validation.Required, is.Email)),
	)
}

// shareView is one entry of the shares listing, enriched with the
// teacher's directory record when one exists.
type shareView struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	Nom         string `json:"nom,omitempty"`
	Prenom      string `json:"prenom,omitempty"`
	DisplayName string `json:"display_name"`
}

type sharesResponse struct {
	Owner      shareView   `json:"owner"`
	SharedWith []shareView `json:"shared_with"`
}

// teacherView is one teacher search result.
type teacherView struct {
	Email  string `json:"email"`
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
}
