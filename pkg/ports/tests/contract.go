package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/ports"
)

// SchemaLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.SchemaLoader.
// setupData maps each seeded key to the bytes GetNode is expected to return.
func SchemaLoaderContractTest(t *testing.T, loader ports.SchemaLoader, setupData map[string][]byte) {
	t.Helper()

	// 1. Test GetNode (Success)
	t.Run("GetNode_Success", func(t *testing.T) {
		for key, expectedContent := range setupData {
			content, err := loader.GetNode(key)
			if err != nil {
				t.Fatalf("unexpected error getting node %s: %v", key, err)
			}
			if string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", key, content, expectedContent)
			}
		}
	})

	// 2. Test GetNode (NotFound)
	t.Run("GetNode_NotFound", func(t *testing.T) {
		_, err := loader.GetNode("non-existent-node")
		if err == nil {
			t.Fatal("expected error for non-existent node, got nil")
		}
		if !errors.Is(err, domain.ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound, got %v", err)
		}
	})

	// 3. Test ListNodes
	t.Run("ListNodes", func(t *testing.T) {
		nodes, err := loader.ListNodes()
		if err != nil {
			t.Fatalf("unexpected error listing nodes: %v", err)
		}

		if len(nodes) != len(setupData) {
			t.Errorf("expected %d nodes, got %d", len(setupData), len(nodes))
		}

		lookup := make(map[string]bool)
		for _, key := range nodes {
			lookup[key] = true
		}

		for key := range setupData {
			if !lookup[key] {
				t.Errorf("node %s missing from list", key)
			}
		}
	})

	// 4. Listed keys are servable
	t.Run("ListNodes_Resolvable", func(t *testing.T) {
		nodes, err := loader.ListNodes()
		if err != nil {
			t.Fatalf("unexpected error listing nodes: %v", err)
		}
		for _, key := range nodes {
			if _, err := loader.GetNode(key); err != nil {
				t.Errorf("listed node %s cannot be loaded: %v", key, err)
			}
		}
	})
}
