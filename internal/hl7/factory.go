package hl7

import (
	"strings"

	"github.com/google/uuid"

	"hl7fileprocessor/internal/constants"
	"hl7fileprocessor/internal/patient"
	"hl7fileprocessor/pkg/stamp"
)

const (
	MessageCode      = "ADT"
	TriggerEvent     = "A01"
	MessageStructure = "ADT_A01"
	ProcessingID     = "P"
	Version          = "2.5.1"

	IdentifierTypeMRN      = "MR"
	PatientClassOutpatient = "O"
	AdmissionTypeRoutine   = "R"
)

type Options struct {
	SendingApplication   string
	ReceivingApplication string
	AssigningAuthority   string
	FileExtension        string
}

func DefaultOptions() Options {
	return Options{
		SendingApplication:   constants.DefaultSendingApplication,
		ReceivingApplication: constants.DefaultReceivingApplication,
		AssigningAuthority:   constants.DefaultAssigningAuthority,
		FileExtension:        constants.DefaultMessageExtension,
	}
}

type FactoryOption func(*Factory)

// WithClock replaces the wall clock used for message and file stamps.
func WithClock(now stamp.Clock) FactoryOption {
	return func(f *Factory) {
		f.stamps = stamp.NewSequence(now)
	}
}

// WithControlIDs replaces the MSH-10 generator.
func WithControlIDs(next func() string) FactoryOption {
	return func(f *Factory) {
		f.controlID = next
	}
}

// Factory maps validated rows to encoded ADT^A01 messages. It is safe for
// concurrent use; file names are unique for the lifetime of the Factory.
type Factory struct {
	opts      Options
	encoder   *Encoder
	stamps    *stamp.Sequence
	controlID func() string
}

func NewFactory(opts Options, encoder *Encoder, options ...FactoryOption) *Factory {
	defaults := DefaultOptions()
	if opts.SendingApplication == "" {
		opts.SendingApplication = defaults.SendingApplication
	}
	if opts.ReceivingApplication == "" {
		opts.ReceivingApplication = defaults.ReceivingApplication
	}
	if opts.AssigningAuthority == "" {
		opts.AssigningAuthority = defaults.AssigningAuthority
	}
	if opts.FileExtension == "" {
		opts.FileExtension = defaults.FileExtension
	}
	if encoder == nil {
		encoder = NewEncoder()
	}

	f := &Factory{
		opts:      opts,
		encoder:   encoder,
		stamps:    stamp.NewSequence(nil),
		controlID: uuid.NewString,
	}
	for _, o := range options {
		o(f)
	}
	return f
}

func (f *Factory) CreateAdmissionMessage(row patient.Row) AdmissionMessage {
	now := f.stamps.Next()

	msg := &Message{}

	msg.Add(NewSegment("MSH")).
		Set(3, f.opts.SendingApplication).
		Set(5, f.opts.ReceivingApplication).
		Set(7, now.Format(constants.MessageTimeLayout)).
		Set(9, MessageCode, TriggerEvent, MessageStructure).
		Set(10, f.controlID()).
		Set(11, ProcessingID).
		Set(12, Version)

	msg.Add(NewSegment("PID")).
		Set(3, row.PatientID, "", "", f.opts.AssigningAuthority, IdentifierTypeMRN).
		Set(5, row.LastName, row.FirstName).
		Set(7, row.DateOfBirth.Format(constants.BirthDateLayout)).
		Set(8, row.Gender)

	msg.Add(NewSegment("PV1")).
		Set(2, PatientClassOutpatient).
		Set(3, "", "", "", f.opts.AssigningAuthority).
		Set(4, AdmissionTypeRoutine)

	return AdmissionMessage{
		FileName: FileName(row.PatientID, stamp.Millis(now), f.opts.FileExtension),
		Content:  f.encoder.Encode(msg),
	}
}

// FileName builds {patientId}_{stamp}.{ext}, replacing characters that
// are not safe in a file name.
func FileName(patientID, ts, ext string) string {
	return sanitize(patientID) + "_" + ts + "." + ext
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return '_'
		case strings.ContainsRune(`<>:"/\|?* `, r):
			return '_'
		}
		return r
	}, s)
}
