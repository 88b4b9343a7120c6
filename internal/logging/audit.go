package logging

import (
	"go.uber.org/zap"
)

// AuditEventType names an auditable step of project generation.
type AuditEventType string

const (
	AuditGenerateStart    AuditEventType = "generate_start"
	AuditGenerateComplete AuditEventType = "generate_complete"
	AuditGenerateFailed   AuditEventType = "generate_failed"
	AuditArtifactRendered AuditEventType = "artifact_rendered"
	AuditArtifactWarning  AuditEventType = "artifact_warning"
	AuditProjectWritten   AuditEventType = "project_written"
	AuditProjectRecorded  AuditEventType = "project_recorded"
)

// AuditLogger emits one structured entry per event under the "audit"
// logger name, so generation history can be filtered from ordinary logs.
type AuditLogger struct {
	requestID string
}

// Audit returns an audit logger bound to a generation request.
func Audit(requestID string) *AuditLogger {
	return &AuditLogger{requestID: requestID}
}

func (a *AuditLogger) log(event AuditEventType, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("event", string(event)),
		zap.String("request_id", a.requestID),
	}, fields...)
	Zap().Named("audit").Info(string(event), fields...)
}

// GenerateStart records the beginning of a generation request.
func (a *AuditLogger) GenerateStart(descriptionLen, overrides int) {
	a.log(AuditGenerateStart, zap.Int("description_len", descriptionLen), zap.Int("overrides", overrides))
}

// ArtifactRendered records one artifact passing validation.
func (a *AuditLogger) ArtifactRendered(kind, path string, size int, warnings int) {
	a.log(AuditArtifactRendered,
		zap.String("kind", kind), zap.String("path", path),
		zap.Int("size", size), zap.Int("warnings", warnings))
}

// ArtifactWarning records a soft validation issue.
func (a *AuditLogger) ArtifactWarning(kind, message string) {
	a.log(AuditArtifactWarning, zap.String("kind", kind), zap.String("message", message))
}

// GenerateComplete records a successful generation.
func (a *AuditLogger) GenerateComplete(projectName, digest string, warnings int, durationMs int64) {
	a.log(AuditGenerateComplete,
		zap.String("project", projectName), zap.String("digest", digest),
		zap.Int("warnings", warnings), zap.Int64("duration_ms", durationMs))
}

// GenerateFailed records an aborted generation.
func (a *AuditLogger) GenerateFailed(kind, stage string, err error) {
	a.log(AuditGenerateFailed, zap.String("kind", kind), zap.String("stage", stage), zap.Error(err))
}

// ProjectWritten records a project persisted to disk.
func (a *AuditLogger) ProjectWritten(dir string, files int) {
	a.log(AuditProjectWritten, zap.String("dir", dir), zap.Int("files", files))
}

// ProjectRecorded records a project added to the registry.
func (a *AuditLogger) ProjectRecorded(id, name string) {
	a.log(AuditProjectRecorded, zap.String("id", id), zap.String("project", name))
}
