package producer

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
)

// EnsureTopic creates the audit topic if it does not exist yet.
// Partition count is kept low; audit ordering only matters per aggregate key.
func (p *Producer) EnsureTopic(ctx context.Context, topic string) error {
	adm := kadm.NewClient(p.client)

	details, err := adm.ListTopics(ctx, topic)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if t, ok := details[topic]; ok && t.Err == nil {
		return nil
	}

	if _, err := adm.CreateTopic(ctx, 3, 1, nil, topic); err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}
