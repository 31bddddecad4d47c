package constants

import "time"

const (
	ServiceName = "hl7-file-processor"
)

const (
	SpreadsheetExtension = ".xlsx"
	ProcessedDirName     = "processed"
	OfficeLockFilePrefix = "~$"
	DefaultSampleFile    = "patients.xlsx"
)

// StampLayout plus a three digit millisecond suffix gives the
// yyyyMMddHHmmssfff stamps used in output and archive names.
const (
	StampLayout       = "20060102150405"
	MessageTimeLayout = "20060102150405"
	BirthDateLayout   = "20060102"
)

const (
	DefaultSendingApplication   = "HL7FileProcessor"
	DefaultReceivingApplication = "HL7Consumer"
	DefaultAssigningAuthority   = "HFP"
	DefaultMessageExtension     = "hl7"
)

const (
	DirPerm  = 0o755
	FilePerm = 0o644
)

const (
	ShutdownTimeout    = 5 * time.Second
	HealthCheckTimeout = 5 * time.Second
)

const (
	DefaultServerPort = 8080
)
