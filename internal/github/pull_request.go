package github

import (
	"encoding/json"
	"fmt"
	"time"
)

type PRState string

const (
	PRStateOpen   PRState = "OPEN"
	PRStateClosed PRState = "CLOSED"
	PRStateMerged PRState = "MERGED"
	PRStateDraft  PRState = "DRAFT" // Virtual state: GitHub returns OPEN + isDraft=true
)

type PullRequest struct {
	Number      int
	URL         string
	State       PRState
	Title       string
	AuthorLogin string
	CreatedAt   time.Time
}

const prJsonFields = "number,url,state,isDraft,title,author,createdAt"

func (pr *PullRequest) UnmarshalJSON(data []byte) error {
	type rawPR struct {
		Number    int       `json:"number"`
		URL       string    `json:"url"`
		State     string    `json:"state"`
		IsDraft   bool      `json:"isDraft"`
		Title     string    `json:"title"`
		CreatedAt time.Time `json:"createdAt"`
		Author    struct {
			Login string `json:"login"`
		} `json:"author"`
	}
	var raw rawPR
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	pr.Number = raw.Number
	pr.URL = raw.URL
	pr.Title = raw.Title
	pr.CreatedAt = raw.CreatedAt
	pr.AuthorLogin = raw.Author.Login

	if raw.IsDraft && raw.State == "OPEN" {
		pr.State = PRStateDraft
	} else {
		switch raw.State {
		case "OPEN":
			pr.State = PRStateOpen
		case "CLOSED":
			pr.State = PRStateClosed
		case "MERGED":
			pr.State = PRStateMerged
		default:
			return fmt.Errorf("unknown PR state: %s", raw.State)
		}
	}

	return nil
}
