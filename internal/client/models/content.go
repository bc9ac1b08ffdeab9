package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ContentKind names one of the entity collections managed from the admin client.
type ContentKind string

const (
	KindPolitician    ContentKind = "politician"
	KindTimelineEvent ContentKind = "timeline_event"
	KindCommitment    ContentKind = "commitment"
	KindVotingRecord  ContentKind = "voting_record"
	KindDocument      ContentKind = "document"
)

var ErrUnknownContentKind = errors.New("unknown content kind")

var ContentKinds = []ContentKind{KindPolitician, KindTimelineEvent, KindCommitment, KindVotingRecord, KindDocument}

func ParseContentKind(s string) (ContentKind, error) {
	for _, k := range ContentKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContentKind, s)
}

// Collection is the path segment used by the admin content endpoints.
func (k ContentKind) Collection() string {
	switch k {
	case KindPolitician:
		return "politicians"
	case KindTimelineEvent:
		return "timeline-events"
	case KindCommitment:
		return "commitments"
	case KindVotingRecord:
		return "voting-records"
	case KindDocument:
		return "documents"
	}
	return string(k)
}

// Module is the permission module guarding the collection.
func (k ContentKind) Module() string {
	return k.Collection()
}

// Content is implemented by every typed entity.
type Content interface {
	Kind() ContentKind
}

type Politician struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Party     string `json:"party"`
	Position  string `json:"position"`
	Region    string `json:"region,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	Biography string `json:"biography,omitempty"`
}

func (Politician) Kind() ContentKind { return KindPolitician }

type TimelineEvent struct {
	ID           string    `json:"id,omitempty"`
	PoliticianID string    `json:"politician_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
	SourceURL    string    `json:"source_url,omitempty"`
}

func (TimelineEvent) Kind() ContentKind { return KindTimelineEvent }

type Commitment struct {
	ID           string     `json:"id,omitempty"`
	PoliticianID string     `json:"politician_id"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	SourceURL    string     `json:"source_url,omitempty"`
}

func (Commitment) Kind() ContentKind { return KindCommitment }

type VotingRecord struct {
	ID           string    `json:"id,omitempty"`
	PoliticianID string    `json:"politician_id"`
	BillTitle    string    `json:"bill_title"`
	Vote         string    `json:"vote"`
	VotedAt      time.Time `json:"voted_at"`
}

func (VotingRecord) Kind() ContentKind { return KindVotingRecord }

type Document struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Summary     string   `json:"summary,omitempty"`
	RelatedToID string   `json:"related_to_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (Document) Kind() ContentKind { return KindDocument }

// Envelope carries a typed entity over the wire together with its kind tag.
type Envelope struct {
	Kind    ContentKind     `json:"kind"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Wrap encodes c into an envelope tagged with its kind.
func Wrap(id string, c Content) (Envelope, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Kind: c.Kind(), ID: id, Payload: b}, nil
}

// Unwrap decodes the payload into the struct matching Kind.
func (e Envelope) Unwrap() (Content, error) {
	var (
		c   Content
		err error
	)
	switch e.Kind {
	case KindPolitician:
		var v Politician
		err = json.Unmarshal(e.Payload, &v)
		c = v
	case KindTimelineEvent:
		var v TimelineEvent
		err = json.Unmarshal(e.Payload, &v)
		c = v
	case KindCommitment:
		var v Commitment
		err = json.Unmarshal(e.Payload, &v)
		c = v
	case KindVotingRecord:
		var v VotingRecord
		err = json.Unmarshal(e.Payload, &v)
		c = v
	case KindDocument:
		var v Document
		err = json.Unmarshal(e.Payload, &v)
		c = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentKind, e.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Kind, err)
	}
	return c, nil
}
