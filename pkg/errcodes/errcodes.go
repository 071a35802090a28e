package errcodes

type ErrorCode string

const (
	AssignmentExists    ErrorCode = "AssignmentExists"
	NotFound            ErrorCode = "NotFound"
	Timeout             ErrorCode = "Timeout"
	PartialAssign       ErrorCode = "PartialAssign"
	InternalServerError ErrorCode = "InternalError"
)
