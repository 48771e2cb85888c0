package aggregate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mosaicnetworks/waybill/src/registry"
	"github.com/mosaicnetworks/waybill/src/workflow"
	"github.com/sirupsen/logrus"
)

// Lister returns the documents of a node. *workflow.Engine implements it.
type Lister interface {
	ListFor(ctx context.Context, node string) (*workflow.ListResult, error)
}

// Collector fetches the document lists of every registry node concurrently.
type Collector struct {
	registry *registry.Registry
	lister   Lister
	timeout  time.Duration
	logger   *logrus.Entry
}

// NewCollector creates a Collector. timeout bounds each per-node fetch; zero
// means no bound beyond the caller's context.
func NewCollector(reg *registry.Registry, lister Lister, timeout time.Duration, logger *logrus.Entry) *Collector {
	return &Collector{
		registry: reg,
		lister:   lister,
		timeout:  timeout,
		logger:   logger,
	}
}

// Views fetches the list of every node, in registry order. A node whose
// fetch fails, times out or only yields placeholder data carries an error.
func (c *Collector) Views(ctx context.Context) []NodeView {
	return c.ViewsOf(ctx, c.registry.Nodes())
}

// ViewsOf is Views restricted to the given nodes.
func (c *Collector) ViewsOf(ctx context.Context, nodes []*registry.Node) []NodeView {
	views := make([]NodeView, len(nodes))

	var wg sync.WaitGroup
	for i, n := range nodes {
		wg.Add(1)
		go func(i int, n *registry.Node) {
			defer wg.Done()
			views[i] = c.fetch(ctx, n)
		}(i, n)
	}
	wg.Wait()

	return views
}

// Collect fetches every node and aggregates the result.
func (c *Collector) Collect(ctx context.Context) *Result {
	res := Aggregate(c.Views(ctx))

	if len(res.Skipped) > 0 {
		c.logger.WithFields(logrus.Fields{
			"skipped": res.Skipped,
			"error":   res.Err,
		}).Warn("Aggregation skipped nodes")
	}

	return res
}

func (c *Collector) fetch(ctx context.Context, n *registry.Node) NodeView {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	list, err := c.lister.ListFor(ctx, n.ID)
	if err != nil {
		return NodeView{Node: n, Err: fmt.Errorf("node %s: %w", n.ID, err)}
	}
	if list.Placeholder {
		return NodeView{Node: n, Err: fmt.Errorf("node %s: %w", n.ID, ErrPlaceholder)}
	}

	return NodeView{Node: n, Documents: list.Documents}
}
