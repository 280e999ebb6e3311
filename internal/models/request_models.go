package models

// ListUsersRequest is the input of the listUsers callable.
type ListUsersRequest struct {
	PageSize  int    `json:"pageSize" validate:"gte=0"`
	PageToken string `json:"pageToken"`
}

// CreateUserRequest is the input of the createUser callable.
type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName"`
	Admin       bool   `json:"admin"`
}

// DeleteUserRequest is the input of the deleteUser callable.
type DeleteUserRequest struct {
	UID string `json:"uid" validate:"required"`
}

// SetUserRoleRequest is the input of the setUserRole callable.
// Admin is a pointer so that an omitted flag is distinguishable from false.
type SetUserRoleRequest struct {
	UID   string `json:"uid" validate:"required"`
	Admin *bool  `json:"admin" validate:"required"`
}

// ResetLinkRequest is the input of the generateResetLink callable.
type ResetLinkRequest struct {
	Email string `json:"email" validate:"required"`
}

// Attachment is a base64 encoded email attachment.
type Attachment struct {
	Content  string `json:"content" validate:"required,base64"`
	Filename string `json:"filename" validate:"required"`
	Type     string `json:"type"`
}

// SendEmailRequest is the body of the send-email endpoint.
type SendEmailRequest struct {
	UIDs        []string     `json:"uids" validate:"required,min=1,dive,required"`
	Subject     string       `json:"subject" validate:"required"`
	HTML        string       `json:"html" validate:"required_without=Text"`
	Text        string       `json:"text" validate:"required_without=HTML"`
	From        string       `json:"from" validate:"omitempty,email"`
	Attachments []Attachment `json:"attachments" validate:"dive"`
}

// SharePlanRequest is the input of the sharePlan callable.
type SharePlanRequest struct {
	Title   string                 `json:"title"`
	Payload map[string]interface{} `json:"payload"`
}

// RatePlanRequest is the input of the ratePlan callable. Value is clamped, not rejected.
type RatePlanRequest struct {
	PlanID string   `json:"planId" validate:"required"`
	Value  *float64 `json:"value" validate:"required"`
}

// RemovePlanRequest is the input of the removePlan callable.
type RemovePlanRequest struct {
	PlanID string `json:"planId" validate:"required"`
}

// SaveFavoriteRequest is the input of the saveFavorite callable.
type SaveFavoriteRequest struct {
	Type string   `json:"type" validate:"required,oneof=start dest"`
	Name string   `json:"name"`
	Lng  *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Lat  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
}
