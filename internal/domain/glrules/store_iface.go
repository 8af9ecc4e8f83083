package glrules

import "context"

type StoreAPI interface {
	ListRules(ctx context.Context, activeOnly bool) ([]Rule, error)
	GetRule(ctx context.Context, id string) (Rule, error)
	CreateRule(ctx context.Context, rule Rule) (Rule, error)
	UpdateRule(ctx context.Context, rule Rule) (Rule, error)
	DeleteRule(ctx context.Context, id string) error
}
