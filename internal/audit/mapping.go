package audit

import "strings"

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// ParseRoute returns action and resource for an HTTP method and gin route path
// (e.g. POST /api/clients -> create/client, GET /api/deals/:id -> get/deal).
// Resource is the singular form of the first path segment after /api; the run
// sub-route of automations is reported as an automation_run.
func ParseRoute(method, routePath string) ActionResource {
	segs := splitRoute(routePath)
	if len(segs) == 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	if segs[0] == "api" {
		segs = segs[1:]
	}
	if len(segs) == 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	resource := singular(segs[0])
	hasID := false
	for _, s := range segs[1:] {
		if strings.HasPrefix(s, ":") {
			hasID = true
			continue
		}
		switch s {
		case "run":
			return ActionResource{Action: "run", Resource: "automation"}
		case "runs":
			return ActionResource{Action: "list", Resource: "automation_run"}
		case "score":
			return ActionResource{Action: "score", Resource: "document"}
		}
	}

	switch method {
	case "GET":
		if hasID {
			return ActionResource{Action: "get", Resource: resource}
		}
		return ActionResource{Action: "list", Resource: resource}
	case "POST":
		return ActionResource{Action: "create", Resource: resource}
	case "PUT", "PATCH":
		return ActionResource{Action: "update", Resource: resource}
	case "DELETE":
		return ActionResource{Action: "delete", Resource: resource}
	default:
		return ActionResource{Action: strings.ToLower(method), Resource: resource}
	}
}

func splitRoute(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func singular(s string) string {
	// clients -> client, automations -> automation; dashboard stays as-is
	if strings.HasSuffix(s, "s") && len(s) > 1 {
		return s[:len(s)-1]
	}
	return s
}
