package config

import (
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL walks a .xrefd.kdl document and overlays its nodes onto cfg.
// Recognized top-level nodes: project, sync, watch, include, exclude.
func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return err
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
			}
		case "sync":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.Sync.Threshold = v
					}
				case "sync_timeout_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Sync.SyncTimeoutMs = v
					}
				case "dirty_timeout_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Sync.DirtyTimeoutMs = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				case "include_system_paths":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.IncludeSystemPaths = b
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}
	return nil
}

// nodeName/firstIntArg/firstStringArg/firstBoolArg/collectStringArgs/
// assignSimpleString mirror the teacher's kdl-go document-walking helpers
// (internal/config/kdl_config.go), unchanged since they are generic over
// any KDL document shape, not specific to the teacher's own config fields.

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
