package glrules

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Rule, error) {
	return s.store.ListRules(ctx, activeOnly)
}

func (s *Service) Get(ctx context.Context, id string) (Rule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Rule{}, ErrNotFound
	}
	return s.store.GetRule(ctx, id)
}

// Create validates and stores a new rule. Authoring errors are reported here and
// never deferred to evaluation.
func (s *Service) Create(ctx context.Context, rule Rule) (Rule, error) {
	rule = normalize(rule)
	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}
	rule.ID = uuid.NewString()
	return s.store.CreateRule(ctx, rule)
}

func (s *Service) Update(ctx context.Context, id string, rule Rule) (Rule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Rule{}, ErrNotFound
	}
	rule = normalize(rule)
	rule.ID = id
	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}
	return s.store.UpdateRule(ctx, rule)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.store.DeleteRule(ctx, id)
}

// Resolver snapshots the active rule set.
func (s *Service) Resolver(ctx context.Context) (*Resolver, error) {
	rules, err := s.store.ListRules(ctx, true)
	if err != nil {
		return nil, err
	}
	return NewResolver(rules), nil
}

// Post resolves a batch of lines against one snapshot of the active rules. An
// entry whose rule cannot be applied keeps its original account and carries the
// error; the other entries are unaffected.
func (s *Service) Post(ctx context.Context, date time.Time, entries []Entry) ([]Posting, error) {
	resolver, err := s.Resolver(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Posting, 0, len(entries))
	for _, e := range entries {
		p, err := resolver.Post(e.Line, e.Polarity, date, e.Account)
		if err != nil {
			if !errors.Is(err, ErrSegmentOutOfRange) && !errors.Is(err, ErrInvalidPolarity) {
				return nil, err
			}
			p.Account = e.Account
			p.Original = e.Account
			p.Overridden = false
			p.Error = err.Error()
		}
		out = append(out, p)
	}
	return out, nil
}

// Failed counts postings that kept their original account because of an error.
func Failed(postings []Posting) int {
	n := 0
	for _, p := range postings {
		if p.Error != "" {
			n++
		}
	}
	return n
}

// Entry is one line submitted for resolution with its pre-override account.
type Entry struct {
	Line     Line     `json:"line"`
	Polarity Polarity `json:"polarity"`
	Account  string   `json:"account"`
}

func normalize(rule Rule) Rule {
	rule.Name = strings.TrimSpace(rule.Name)
	for i := range rule.Conditions {
		rule.Conditions[i].Value = strings.TrimSpace(rule.Conditions[i].Value)
	}
	return rule
}
