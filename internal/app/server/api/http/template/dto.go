package template

import (
	"cogniflow/internal/domain/template"
)

type createInput struct {
	Body template.Draft
}

type updateInput struct {
	ID   string `path:"id" doc:"Template id"`
	Body template.Draft
}

type idInput struct {
	ID string `path:"id" doc:"Template id"`
}

type templateOutput struct {
	Body template.Template
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Templates []template.Template `json:"templates"`
}

type statusOutput struct {
	Body statusResponse
}

type statusResponse struct {
	Status string `json:"status"`
}
