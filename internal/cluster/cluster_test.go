package cluster

import (
	"testing"

	"github.com/jwulan/newsdigest/internal/news"
)

func TestAssignGroupsSimilarTitlesAcrossSources(t *testing.T) {
	items := []news.Item{
		{Title: "OpenAI releases new model for agents", Source: "A"},
		{Title: "OpenAI releases a new model for AI agents", Source: "B"},
	}

	out, res := Assign(items)
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0].ClusterID == "" || out[0].ClusterID != out[1].ClusterID {
		t.Errorf("expected shared cluster ID, got %q and %q", out[0].ClusterID, out[1].ClusterID)
	}
	if res.Clusters != 1 || res.Clustered != 2 {
		t.Errorf("expected 1 cluster of 2, got %+v", res)
	}
}

func TestAssignSingletonsUnchanged(t *testing.T) {
	items := []news.Item{
		{Title: "Completely unrelated breakthrough in compilers", Source: "A"},
		{Title: "Different story about database internals today", Source: "B"},
	}

	out, res := Assign(items)
	for _, item := range out {
		if item.ClusterID != "" {
			t.Errorf("expected no cluster ID on singleton %q, got %q", item.Title, item.ClusterID)
		}
	}
	if res.Clusters != 0 {
		t.Errorf("expected no clusters, got %+v", res)
	}
}

func TestAssignShortTitlesExactMatchOnly(t *testing.T) {
	items := []news.Item{
		{Title: "Big AI deal", Source: "A"},
		{Title: "Big AI deal", Source: "B"},
		{Title: "Big AI deals", Source: "C"}, // near-duplicate, but short titles need exact match
	}

	out, _ := Assign(items)
	if out[0].ClusterID == "" || out[0].ClusterID != out[1].ClusterID {
		t.Error("expected identical short titles clustered")
	}
	if out[2].ClusterID != "" {
		t.Errorf("expected near-duplicate short title unclustered, got %q", out[2].ClusterID)
	}
}

func TestAssignIDsFollowFirstInsertionOrder(t *testing.T) {
	items := []news.Item{
		{Title: "Quantum computing milestone reached by research lab"},
		{Title: "Totally different singleton story in the middle here"},
		{Title: "Acquisition rumors swirl around popular startup company"},
		{Title: "Quantum computing milestone reached, says research lab"},
		{Title: "Acquisition rumors swirl around that popular startup"},
	}

	out, res := Assign(items)
	if res.Clusters != 2 {
		t.Fatalf("expected 2 clusters, got %+v", res)
	}

	ids := make(map[string]string)
	for _, item := range out {
		if item.ClusterID != "" {
			ids[item.Title] = item.ClusterID
		}
	}
	if ids["Quantum computing milestone reached by research lab"] != "0" {
		t.Errorf("expected first-seen cluster to get ID 0, got %q", ids["Quantum computing milestone reached by research lab"])
	}
	if ids["Acquisition rumors swirl around popular startup company"] != "1" {
		t.Errorf("expected second cluster to get ID 1, got %q", ids["Acquisition rumors swirl around popular startup company"])
	}
}

func TestKeyForDropsShortWords(t *testing.T) {
	a := keyFor("OpenAI releases new model for agents")
	b := keyFor("OpenAI releases a new model for AI agents")
	if a != b {
		t.Errorf("expected matching keys, got %q and %q", a, b)
	}
	if a != "openai releases model agents" {
		t.Errorf("unexpected key %q", a)
	}
}

func TestKeyForStripsPunctuation(t *testing.T) {
	a := keyFor("Exclusive: OpenAI's releases, new model (for agents)!")
	if a != keyFor("exclusive openais releases new model for agents") {
		t.Errorf("expected punctuation-insensitive key, got %q", a)
	}
}

func TestAssignPreservesMemberInputOrder(t *testing.T) {
	items := []news.Item{
		{Title: "Quantum computing milestone reached by research lab", Source: "A"},
		{Title: "Quantum computing milestone reached, says research lab", Source: "B"},
	}
	out, _ := Assign(items)
	if out[0].Source != "A" || out[1].Source != "B" {
		t.Errorf("expected input order preserved within a cluster, got %v", out)
	}
}
