package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRunAddAndList(t *testing.T) {
	t.Setenv("PANTRYCORE_STORAGE_DRIVER", "memory")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"add", "-name", "Milk", "-store", "Giant"}, &stdout, &stderr); code != 0 {
		t.Fatalf("add exited %d: %s", code, stderr.String())
	}
	var item map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &item); err != nil {
		t.Fatalf("decode add output: %v", err)
	}
	if item["name"] != "Milk" {
		t.Fatalf("unexpected add output %v", item)
	}

	// Separate invocations use separate memory stores, so list starts empty.
	stdout.Reset()
	if code := run([]string{"list"}, &stdout, &stderr); code != 0 {
		t.Fatalf("list exited %d: %s", code, stderr.String())
	}
}

func TestRunValidationFailure(t *testing.T) {
	t.Setenv("PANTRYCORE_STORAGE_DRIVER", "memory")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"add", "-name", "  "}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "error:") {
		t.Fatalf("expected error output, got %s", stderr.String())
	}
}

func TestRunUsage(t *testing.T) {
	t.Setenv("PANTRYCORE_STORAGE_DRIVER", "memory")

	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit 2 for missing command, got %d", code)
	}
	if code := run([]string{"bogus"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 for unknown command, got %d", code)
	}
	if !strings.Contains(stderr.String(), "usage: pantrycore") {
		t.Fatalf("expected usage text, got %s", stderr.String())
	}
}
