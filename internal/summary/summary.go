// Package summary computes aggregate statistics over a record set.
package summary

import (
	"sort"

	"github.com/cisec/logsift/internal/classify"
	"github.com/cisec/logsift/internal/record"
)

// DefaultTopN bounds the top failed-login sources table.
const DefaultTopN = 10

// Count is one key with its occurrence count.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ACLCount is one ACL name/action pair with its occurrence count.
type ACLCount struct {
	ACL    string `json:"acl"`
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// Summary holds the aggregate views over a filtered record set. All counts
// are deterministic for the same input; ranking ties break by first-seen
// order.
type Summary struct {
	Total            int        `json:"total"`
	ByEventType      []Count    `json:"by_event_type"`
	ByMnemonic       []Count    `json:"by_mnemonic"`
	BySeverity       []Count    `json:"by_severity"`
	TopFailedSources []Count    `json:"top_failed_sources"`
	InterfaceFlaps   []Count    `json:"interface_flaps"`
	ACLActivity      []ACLCount `json:"acl_activity"`
}

// Summarize computes all aggregates in one pass over the records. topN
// bounds the failed-login source ranking; values below 1 use DefaultTopN.
func Summarize(records []record.Record, topN int) Summary {
	if topN < 1 {
		topN = DefaultTopN
	}

	byEventType := newCounter()
	byMnemonic := newCounter()
	bySeverity := newCounter()
	failedSources := newCounter()
	flaps := newCounter()
	aclKeys := newCounter()
	aclActions := make(map[string]string)

	for _, r := range records {
		byEventType.add(r.EventType)
		if r.Mnemonic != "" {
			byMnemonic.add(r.Mnemonic)
		}
		if name := r.SeverityName(); name != "" {
			bySeverity.add(name)
		}

		switch r.EventType {
		case classify.EventLoginFailed:
			if src, ok := r.Field("src_ip"); ok {
				failedSources.add(src)
			}
		case classify.EventLinkState, classify.EventLineProtoState:
			if iface, ok := r.Field("interface"); ok {
				flaps.add(iface)
			}
		case classify.EventACLPermitted, classify.EventACLDenied, classify.EventACLDeniedHW:
			acl, _ := r.Field("acl")
			action, ok := r.Field("action")
			if !ok {
				// Hardware-path denies carry no action field.
				action = "denied"
			}
			key := acl + "\x00" + action
			aclKeys.add(key)
			aclActions[key] = action
		}
	}

	acl := make([]ACLCount, 0, len(aclKeys.keys))
	for _, c := range aclKeys.counts() {
		action := aclActions[c.Key]
		name := c.Key[:len(c.Key)-len(action)-1]
		acl = append(acl, ACLCount{ACL: name, Action: action, Count: c.Count})
	}

	return Summary{
		Total:            len(records),
		ByEventType:      byEventType.ranked(),
		ByMnemonic:       byMnemonic.ranked(),
		BySeverity:       bySeverity.ranked(),
		TopFailedSources: top(failedSources.ranked(), topN),
		InterfaceFlaps:   flaps.counts(),
		ACLActivity:      acl,
	}
}

// counter tracks occurrence counts while remembering first-seen key order,
// so ranking ties break stably.
type counter struct {
	keys   []string
	values map[string]int
}

func newCounter() *counter {
	return &counter{values: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.values[key]; !seen {
		c.keys = append(c.keys, key)
	}
	c.values[key]++
}

// counts returns the counts in first-seen order.
func (c *counter) counts() []Count {
	out := make([]Count, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, Count{Key: k, Count: c.values[k]})
	}
	return out
}

// ranked returns the counts sorted by descending count, ties in first-seen
// order.
func (c *counter) ranked() []Count {
	out := c.counts()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func top(counts []Count, n int) []Count {
	if len(counts) > n {
		return counts[:n]
	}
	return counts
}
