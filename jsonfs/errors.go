package jsonfs

import (
	"errors"
	"fmt"

	platformerrors "github.com/jmgilman/go/errors"

	"github.com/dendrascience/jsonfs/tree"
)

var (
	// ErrNotFound is returned for any path that does not resolve.
	ErrNotFound = tree.ErrNotFound

	ErrNotDirectory   = platformerrors.New(platformerrors.CodeInvalidInput, "not a directory")
	ErrIsDirectory    = platformerrors.New(platformerrors.CodeInvalidInput, "is a directory")
	ErrReadOnly       = platformerrors.New(platformerrors.CodeForbidden, "read-only file system")
	ErrInvalidRequest = platformerrors.New(platformerrors.CodeInvalidInput, "invalid request")
	ErrPermission     = platformerrors.New(platformerrors.CodeForbidden, "permission denied")
)

// LoadStage names the step of a document load that failed.
type LoadStage string

const (
	StageRead  LoadStage = "read"
	StageParse LoadStage = "parse"
	StageRoot  LoadStage = "root"
	StageStat  LoadStage = "stat"
)

// Code is the platform error code a failure at this stage carries.
func (s LoadStage) Code() platformerrors.ErrorCode {
	switch s {
	case StageRead:
		return platformerrors.CodeNotFound
	case StageParse, StageRoot:
		return platformerrors.CodeInvalidInput
	case StageStat:
		return platformerrors.CodeUnavailable
	}
	return platformerrors.CodeUnknown
}

// LoadError reports a failed load of the backing document. It never reaches
// filesystem callers; a failed reload keeps the previous generation.
//
// Err is a platform error coded by Stage and carrying "path" and "stage"
// context; the underlying cause stays reachable through errors.Is and As.
type LoadError struct {
	Path  string
	Stage LoadStage
	Err   error
}

func newLoadError(path string, stage LoadStage, cause error) *LoadError {
	return &LoadError{
		Path:  path,
		Stage: stage,
		Err: platformerrors.WrapWithContext(cause, stage.Code(), string(stage), map[string]interface{}{
			"path":  path,
			"stage": string(stage),
		}),
	}
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Code returns the platform error code of the failure.
func (e *LoadError) Code() platformerrors.ErrorCode {
	return platformerrors.GetCode(e.Err)
}

// Cause returns the error the failing stage reported.
func (e *LoadError) Cause() error {
	if cause := errors.Unwrap(e.Err); cause != nil {
		return cause
	}
	return e.Err
}

// Op is a mutating filesystem operation.
type Op string

const (
	OpCreate      Op = "create"
	OpWrite       Op = "write"
	OpTruncate    Op = "truncate"
	OpMkdir       Op = "mkdir"
	OpRmdir       Op = "rmdir"
	OpUnlink      Op = "unlink"
	OpRename      Op = "rename"
	OpLink        Op = "link"
	OpSymlink     Op = "symlink"
	OpMknod       Op = "mknod"
	OpChmod       Op = "chmod"
	OpChown       Op = "chown"
	OpUtimens     Op = "utimens"
	OpSetxattr    Op = "setxattr"
	OpRemovexattr Op = "removexattr"
)

// Reject returns the error for a mutating operation. Every mutation fails
// the same way and none of them touches the document.
func Reject(op Op) error {
	return platformerrors.WrapWithContext(ErrReadOnly, platformerrors.CodeForbidden, string(op),
		map[string]interface{}{"op": string(op)})
}
