package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "funnel"

// FunnelRepo 每个步骤保存一个 run id 集合，另有一个集合记录每个漏斗出现过的步骤。
type FunnelRepo struct {
	client redis.UniversalClient
}

func NewFunnelRepo(client redis.UniversalClient) *FunnelRepo {
	return &FunnelRepo{client: client}
}

func stepsKey(funnel string) string {
	return fmt.Sprintf("%s:%s:steps", keyPrefix, funnel)
}

func hitsKey(funnel, step string) string {
	return fmt.Sprintf("%s:%s:hits:%s", keyPrefix, funnel, step)
}

func (r *FunnelRepo) Hit(ctx context.Context, funnel, step, runID string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SAdd(ctx, stepsKey(funnel), step)
		p.SAdd(ctx, hitsKey(funnel, step), runID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record hit %s/%s: %w", funnel, step, err)
	}
	return nil
}

func (r *FunnelRepo) Counts(ctx context.Context, funnel string) (map[string]int, error) {
	steps, err := r.client.SMembers(ctx, stepsKey(funnel)).Result()
	if err != nil {
		return nil, fmt.Errorf("list steps of %s: %w", funnel, err)
	}
	if len(steps) == 0 {
		return map[string]int{}, nil
	}

	cmds := make([]*redis.IntCmd, len(steps))
	_, err = r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, step := range steps {
			cmds[i] = p.SCard(ctx, hitsKey(funnel, step))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count hits of %s: %w", funnel, err)
	}

	out := make(map[string]int, len(steps))
	for i, step := range steps {
		out[step] = int(cmds[i].Val())
	}
	return out, nil
}
