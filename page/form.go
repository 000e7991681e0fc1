package page

import (
	"context"
	"errors"

	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/contact"
	"go.uber.org/zap"
)

// Focus is the control receiving typed text
type Focus uint8

const (
	FocusNone Focus = iota
	FocusConsole
	FocusCodename
	FocusEmail
	FocusMessage
	FocusSubmit
	focusCount
)

func (f Focus) String() string {
	switch f {
	case FocusConsole:
		return "console"
	case FocusCodename:
		return "codename"
	case FocusEmail:
		return "email"
	case FocusMessage:
		return "message"
	case FocusSubmit:
		return "submit"
	}
	return "none"
}

const fieldLimit = 512

// form is the contact form state
type form struct {
	fields  [3][]rune // codename, email, message
	status  string
	failed  bool
	sending bool
}

func (f *form) field(focus Focus) *[]rune {
	switch focus {
	case FocusCodename:
		return &f.fields[0]
	case FocusEmail:
		return &f.fields[1]
	case FocusMessage:
		return &f.fields[2]
	}
	return nil
}

func (f *form) submission() contact.Submission {
	return contact.Submission{
		Codename: string(f.fields[0]),
		Email:    string(f.fields[1]),
		Message:  string(f.fields[2]),
	}
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i] = f.fields[i][:0]
	}
}

// cycleFocus moves focus forward or back, wrapping through FocusNone
func (p *Page) cycleFocus(back bool) {
	step := Focus(1)
	if back {
		step = focusCount - 1
	}
	p.focus = (p.focus + step) % focusCount
	p.dirty = true
	p.ensureFocusVisible()
}

func (p *Page) setFocus(f Focus) {
	p.focus = f
	p.dirty = true
}

// typeRune routes text to the focused control
func (p *Page) typeRune(r rune) {
	switch p.focus {
	case FocusConsole:
		p.console.Type(r)
	case FocusCodename, FocusEmail, FocusMessage:
		field := p.form.field(p.focus)
		if len(*field) < fieldLimit {
			*field = append(*field, r)
		}
	}
}

func (p *Page) backspace() {
	switch p.focus {
	case FocusConsole:
		p.console.Backspace()
	case FocusCodename, FocusEmail, FocusMessage:
		field := p.form.field(p.focus)
		if n := len(*field); n > 0 {
			*field = (*field)[:n-1]
		}
	}
}

// submitForm validates locally, then delivers in the background
// The result is posted back to the loop
func (p *Page) submitForm() {
	if p.form.sending {
		return
	}
	sub := p.form.submission()
	if err := sub.Validate(); err != nil {
		p.form.status = contact.MsgMissingFields
		p.form.failed = true
		p.dirty = true
		return
	}

	if p.submitter == nil {
		p.formAccepted(nil)
		return
	}

	p.form.sending = true
	p.form.status = "Transmitting..."
	p.form.failed = false
	p.dirty = true

	ctx, submitter := p.ctx, p.submitter
	go func() {
		ctx, cancel := context.WithTimeout(ctx, constants.ContactRequestTimeout)
		defer cancel()
		ack, err := submitter.Submit(ctx, sub)
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return
		}
		p.poster.Post(func() { p.formDone(ack, err) })
	}()
}

func (p *Page) formDone(ack *contact.Ack, err error) {
	if !p.active {
		return
	}
	p.form.sending = false
	if err != nil {
		p.logger.Info("contact submission failed", zap.Error(err))
		p.stats.failed.Add(1)
		p.form.failed = true
		if errors.Is(err, contact.ErrMissingFields) {
			p.form.status = contact.MsgMissingFields
		} else {
			p.form.status = "Transmission failed. The network is watching. Try again."
		}
		p.dirty = true
		return
	}
	p.formAccepted(ack)
}

func (p *Page) formAccepted(ack *contact.Ack) {
	p.stats.sent.Add(1)
	p.form.failed = false
	p.form.status = p.doc.Contact.SuccessTitle + ": " + p.doc.Contact.Success
	if ack != nil {
		p.logger.Info("contact submission acknowledged",
			zap.String("id", ack.ID), zap.Time("timestamp", ack.Timestamp))
	}
	p.form.reset()
	p.dirty = true
}
