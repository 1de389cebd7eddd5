package domain

// FieldValidation is the validation marker of one form field.
type FieldValidation string

const (
	FieldIdle    FieldValidation = "idle" // Not validated yet
	FieldValid   FieldValidation = "valid"
	FieldInvalid FieldValidation = "invalid"
)

// FormName identifies one of the two form slots.
type FormName string

const (
	FormAddUser  FormName = "add"
	FormEditUser FormName = "edit"
)

// UserFormData is the transient input held by a form slot.
type UserFormData struct {
	Name  string `json:"name" mapstructure:"name"`
	Email string `json:"email" mapstructure:"email"`
}

// UserFormValidation is derived from UserFormData by the validator.
// It is only hand-constructed as the all-idle default.
type UserFormValidation struct {
	Name    FieldValidation `json:"name"`
	Email   FieldValidation `json:"email"`
	IsValid bool            `json:"isValid"`
}

// UserForm is one form slot. Validation reflects the last explicit validate
// transition, not necessarily the current Data.
type UserForm struct {
	Data       UserFormData       `json:"data"`
	Validation UserFormValidation `json:"validation"`
	Show       bool               `json:"show"`
}

// Forms holds both slots. They are independent and never contend.
type Forms struct {
	AddUser  UserForm `json:"addUser"`
	EditUser UserForm `json:"editUser"`
}

// DefaultUserForm returns an empty, hidden form with all-idle validation.
func DefaultUserForm() UserForm {
	return UserForm{
		Data: UserFormData{},
		Validation: UserFormValidation{
			Name:    FieldIdle,
			Email:   FieldIdle,
			IsValid: false,
		},
		Show: false,
	}
}

// Form returns the slot with the given name.
func (f Forms) Form(name FormName) (UserForm, bool) {
	switch name {
	case FormAddUser:
		return f.AddUser, true
	case FormEditUser:
		return f.EditUser, true
	}
	return UserForm{}, false
}
