package item

import (
	"cogniflow/internal/domain/item"
)

type createInput struct {
	Body item.Draft
}

type itemOutput struct {
	Body item.Item
}

type listInput struct {
	Type     string `query:"type" doc:"Filter by item type" required:"false"`
	Status   string `query:"status" doc:"Filter by status" required:"false"`
	Tag      string `query:"tag" doc:"Filter by tag" required:"false"`
	Archived string `query:"archived" enum:"true,false" doc:"Filter by archived state" required:"false"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Items []item.Item `json:"items"`
}

type idInput struct {
	ID string `path:"id" doc:"Item id"`
}

type updateInput struct {
	ID   string `path:"id" doc:"Item id"`
	Body item.Update
}

type bulkUpdateInput struct {
	Body bulkUpdateRequest
}

type bulkUpdateRequest struct {
	IDs    []string    `json:"ids" minItems:"1"`
	Update item.Update `json:"update"`
}

type bulkUpdateOutput struct {
	Body bulkUpdateResponse
}

type bulkUpdateResponse struct {
	Updated int `json:"updated"`
}

type queryInput struct {
	Body item.Query
}

type searchInput struct {
	Terms []string `query:"q" doc:"Search terms" required:"false"`
}

type rangeInput struct {
	Start string `query:"start" doc:"Range start, RFC 3339" format:"date-time"`
	End   string `query:"end" doc:"Range end, RFC 3339" format:"date-time"`
}

type tagsOutput struct {
	Body tagsResponse
}

type tagsResponse struct {
	Tags []item.TagStat `json:"tags"`
}

type activityInput struct {
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"500" doc:"Max entries to return"`
}

type activityOutput struct {
	Body activityResponse
}

type activityResponse struct {
	Entries []item.Activity `json:"entries"`
}

type statusOutput struct {
	Body statusResponse
}

type statusResponse struct {
	Status string `json:"status"`
}
