package audit

import "strings"

// ActionResource holds action and resource derived from a gRPC full method name.
type ActionResource struct {
	Action   string
	Resource string
}

// Methods whose handlers write their own, richer audit entries. The audit interceptor skips them.
var selfAudited = map[string]bool{
	"/rsvp.v1.VerificationService/SendCode":   true,
	"/rsvp.v1.VerificationService/VerifyCode": true,
	"/rsvp.v1.ResponseService/SubmitResponse": true,
	"/rsvp.v1.AdminService/Login":             true,
}

// method overrides where the verb prefix does not describe the action well.
var overrides = map[string]ActionResource{
	"/rsvp.v1.AdminService/Logout":         {Action: "admin_logout", Resource: "admin"},
	"/rsvp.v1.AdminService/ListGuests":     {Action: "list", Resource: "guest"},
	"/rsvp.v1.ResponseService/GetResponse": {Action: "get", Resource: "response"},
	"/rsvp.v1.DevService/GetCode":          {Action: "dev_code_read", Resource: "verification"},
}

// SelfAudited reports whether the handler for fullMethod records its own audit entry.
func SelfAudited(fullMethod string) bool {
	return selfAudited[fullMethod]
}

// ParseFullMethod returns action and resource for a gRPC full method (e.g. /rsvp.v1.AdminService/ListGuests).
// Action is a verb: get, list, create, update, delete, or a lowercase method name for others.
// Resource is derived from the service name (e.g. ResponseService -> response).
func ParseFullMethod(fullMethod string) ActionResource {
	if ar, ok := overrides[fullMethod]; ok {
		return ar
	}
	// fullMethod format: /rsvp.v1.ServiceName/MethodName
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	method := fullMethod[slash+1:]
	beforeSlash := fullMethod[:slash]
	dot := strings.LastIndex(beforeSlash, ".")
	if dot < 0 {
		return ActionResource{Action: strings.ToLower(method), Resource: "unknown"}
	}
	return ActionResource{Action: methodToAction(method), Resource: serviceToResource(beforeSlash[dot+1:])}
}

func serviceToResource(serviceName string) string {
	s := strings.TrimSuffix(serviceName, "Service")
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s[0:1]) + s[1:]
}

func methodToAction(method string) string {
	switch {
	case strings.HasPrefix(method, "Get") && method != "Get":
		return "get"
	case strings.HasPrefix(method, "List"):
		return "list"
	case strings.HasPrefix(method, "Create"):
		return "create"
	case strings.HasPrefix(method, "Submit"):
		return "submit"
	case strings.HasPrefix(method, "Send"):
		return "send"
	case strings.HasPrefix(method, "Verify"):
		return "verify"
	case strings.HasPrefix(method, "Delete"):
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
