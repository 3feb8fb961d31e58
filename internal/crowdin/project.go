package crowdin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/digitalmediaserver/crowdinsync/internal/namespace"
)

type projectInfo struct {
	Files []infoNode `json:"files"`
}

type infoNode struct {
	NodeType string     `json:"node_type"`
	Name     string     `json:"name"`
	Files    []infoNode `json:"files"`
}

// DescribeProject fetches the whole project tree.
func (c *HTTPClient) DescribeProject(ctx context.Context) (*namespace.Snapshot, error) {
	var info projectInfo
	err := c.callJSON(ctx, request{op: "describe project", method: http.MethodPost, endpoint: "info"}, &info)
	if err != nil {
		return nil, err
	}
	entries, err := toEntries(info.Files)
	if err != nil {
		return nil, &RemoteProtocolError{Op: "describe project", StatusCode: http.StatusOK, Message: err.Error()}
	}
	snap, err := namespace.Build(entries, c.now())
	if err != nil {
		return nil, &RemoteProtocolError{Op: "describe project", StatusCode: http.StatusOK, Message: err.Error()}
	}
	c.logger.Debug("described project")
	return snap, nil
}

func toEntries(nodes []infoNode) ([]namespace.Entry, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]namespace.Entry, 0, len(nodes))
	for _, n := range nodes {
		kind, err := parseNodeType(n.NodeType)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", n.Name, err)
		}
		children, err := toEntries(n.Files)
		if err != nil {
			return nil, err
		}
		out = append(out, namespace.Entry{Name: n.Name, Kind: kind, Children: children})
	}
	return out, nil
}

func parseNodeType(t string) (namespace.Kind, error) {
	switch t {
	case "branch":
		return namespace.KindBranch, nil
	case "directory":
		return namespace.KindFolder, nil
	case "file":
		return namespace.KindFile, nil
	default:
		return 0, fmt.Errorf("unknown node type %q", t)
	}
}
