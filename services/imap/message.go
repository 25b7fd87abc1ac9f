package imap

import (
	"bytes"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/jhillyerd/enmime"

	"github.com/customeros/mailagent/dto"
)

const unknownSender = "Unknown"

// toRecord normalizes a fetched message. The returned time is the message date
// when one could be determined, zero otherwise.
func (s *IMAPService) toRecord(msg *imap.Message) (dto.EmailRecord, time.Time) {
	var from, subject, rawDate, body string
	var sent time.Time

	if raw := extractFullMessage(msg); len(raw) > 0 {
		envelope, err := enmime.ReadEnvelope(bytes.NewReader(raw))
		if err != nil {
			s.log.Warnf("Error parsing message %d with enmime: %v", msg.SeqNum, err)
		} else {
			from = envelope.GetHeader("From")
			subject = envelope.GetHeader("Subject")
			rawDate = envelope.GetHeader("Date")
			body = envelope.Text
			if date, err := mail.ParseDate(rawDate); err == nil {
				sent = date
			}
		}
	}

	if msg.Envelope != nil {
		if from == "" && len(msg.Envelope.From) > 0 {
			from = formatAddress(msg.Envelope.From[0])
		}
		if subject == "" {
			subject = msg.Envelope.Subject
		}
		if sent.IsZero() && !msg.Envelope.Date.IsZero() {
			sent = msg.Envelope.Date
		}
	}
	if sent.IsZero() && !msg.InternalDate.IsZero() {
		sent = msg.InternalDate
	}

	record := dto.EmailRecord{
		From:    strings.TrimSpace(from),
		Subject: strings.TrimSpace(subject),
		Body:    body,
		Date:    rawDate,
	}
	if record.From == "" {
		record.From = unknownSender
	}
	if !sent.IsZero() {
		record.Date = sent.Format(time.RFC3339)
	}

	return record, sent
}

// extractFullMessage returns the BODY[] literal of a message
func extractFullMessage(msg *imap.Message) []byte {
	for section, literal := range msg.Body {
		if section == nil || literal == nil {
			continue
		}
		if len(section.Path) == 0 && section.Specifier == imap.EntireSpecifier && section.Partial == nil {
			data, err := io.ReadAll(literal)
			if err == nil {
				return data
			}
		}
	}
	return nil
}

func formatAddress(addr *imap.Address) string {
	if addr == nil {
		return ""
	}
	address := addr.Address()
	if address == "@" {
		address = ""
	}
	switch {
	case addr.PersonalName != "" && address != "":
		return addr.PersonalName + " <" + address + ">"
	case address != "":
		return address
	default:
		return addr.PersonalName
	}
}
