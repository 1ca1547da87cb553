package core

type AccessLevel string

const (
	AccessAnonymous  AccessLevel = "anonymous"
	AccessPrivileged AccessLevel = "privileged"
)

const (
	OperationCreate     = "create"
	OperationFollow     = "follow"
	OperationAccountAdd = "account_add"
	OperationRevoke     = "revoke"
)

type OperationDescriptor struct {
	Name   string      `json:"name"`
	Access AccessLevel `json:"access"`
}

// Manifest lists the public operations and who may call them. Redemption is
// anonymous because holding the token is the authorization.
func Manifest() []OperationDescriptor {
	return []OperationDescriptor{
		{Name: OperationCreate, Access: AccessPrivileged},
		{Name: OperationFollow, Access: AccessAnonymous},
		{Name: OperationAccountAdd, Access: AccessAnonymous},
		{Name: OperationRevoke, Access: AccessPrivileged},
	}
}

func OperationAccess(name string) (AccessLevel, bool) {
	for _, descriptor := range Manifest() {
		if descriptor.Name == name {
			return descriptor.Access, true
		}
	}
	return "", false
}
