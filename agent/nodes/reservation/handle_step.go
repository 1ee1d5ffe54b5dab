package reservationnode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	bookingx "github.com/tsukimori/yoyaku-agent/agent/booking"
	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
	extractx "github.com/tsukimori/yoyaku-agent/agent/extract"
	statex "github.com/tsukimori/yoyaku-agent/agent/state"
)

// Deps are the collaborators a step handler may call out to.
type Deps struct {
	Datetime   contractx.DatetimeExtractor
	Dispatcher *bookingx.Dispatcher
}

var (
	executeWords = []string{"実行", "はい", "ok", "yes", "✅", "予約する"}
	cancelWords  = []string{"キャンセル", "cancel", "やめる", "中止"}
	editWords    = []string{"修正", "変更", "edit"}

	noRequestWords = []string{"なし", "ない", "特になし", "特にない", "no"}
)

// HandleStep advances the session by exactly one step. Extraction
// failures keep the session where it is and re-prompt; only a
// successful extraction moves the step pointer forward.
func HandleStep(ctx context.Context, in *GraphState, deps Deps) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state has no session", contractx.ErrValidation)
	}
	sess := in.Session

	if sess.Ended && !sess.Step.Terminal() {
		in.Reply = contractx.StepResult{
			Message:       "このセッションは終了しています。新しい予約を開始してください。",
			Step:          sess.Step.String(),
			Error:         true,
			RestartNeeded: true,
		}
		return in, nil
	}

	step := sess.Step
	if step == statex.StepInitial {
		// The first turn carries the first answer already.
		sess.Step = statex.StepDatetimeInput
		step = statex.StepDatetimeInput
	}

	switch step {
	case statex.StepDatetimeInput:
		handleDatetime(ctx, in, deps)
	case statex.StepPartySizeInput:
		handlePartySize(in)
	case statex.StepContactInfoInput:
		handleContact(in)
	case statex.StepEmailInput:
		handleEmail(in)
	case statex.StepSpecialRequestsInput:
		handleSpecialRequests(in)
	case statex.StepConfirmation:
		handleConfirmation(ctx, in, deps)
	default:
		in.Reply = contractx.StepResult{
			Message: renderTerminal(sess),
			Step:    sess.Step.String(),
			Success: sess.Result != nil && sess.Result.Success,
		}
	}
	return in, nil
}

func handleDatetime(ctx context.Context, in *GraphState, deps Deps) {
	sess := in.Session

	if in.Text == "" {
		in.Reply = promptReply(sess, datetimePrompt, datetimeOptions)
		return
	}

	// Bulk form: every field in one message, straight to confirmation.
	if extractx.IsBulkForm(in.Text) {
		form, missing, err := extractx.ParseBulkForm(in.Text)
		if err != nil {
			if len(missing) > 0 {
				in.Reply = errorReply(sess, renderBulkFormMissing(missing), nil)
				return
			}
			in.Reply = errorReply(sess, datetimeRetryPrompt, datetimeOptions)
			return
		}
		sess.Fields.Datetime = form.Datetime
		sess.Fields.PartySize = form.PartySize
		contact := form.Contact
		email := contact.Email
		contact.Email = ""
		sess.Fields.Contact = &contact
		sess.Fields.Email = email
		sess.Fields.SpecialRequests = form.SpecialRequests
		sess.Fields.RequestsCollected = true
		sess.Step = statex.StepConfirmation
		in.Reply = promptReply(sess, renderConfirmation(sess), confirmationOptions)
		return
	}

	t, err := deps.Datetime.Extract(ctx, in.Text, in.Now)
	if err != nil {
		log.Debug().Err(err).Str("session_id", sess.ID).Msg("datetime extraction failed")
		in.Reply = errorReply(sess, datetimeRetryPrompt, datetimeOptions)
		return
	}

	sess.Fields.Datetime = t.Format("2006-01-02T15:04:05")
	advance(in, ackDatetime(t))
}

func handlePartySize(in *GraphState) {
	sess := in.Session

	size, err := extractx.PartySize(in.Text)
	if err != nil {
		in.Reply = errorReply(sess, partySizeRetryPrompt, partySizeOptions)
		return
	}

	sess.Fields.PartySize = size
	advance(in, ackPartySize(size))
}

func handleContact(in *GraphState) {
	sess := in.Session

	contact, err := extractx.Contact(in.Text)
	if err != nil {
		in.Reply = errorReply(sess, contactRetryPrompt, nil)
		return
	}

	sess.Fields.Contact = &contact
	advance(in, ackContact(contact))
}

func handleEmail(in *GraphState) {
	sess := in.Session

	email, err := extractx.Email(in.Text)
	if err != nil {
		in.Reply = errorReply(sess, emailRetryPrompt, nil)
		return
	}

	sess.Fields.Email = email
	advance(in, ackEmail)
}

func handleSpecialRequests(in *GraphState) {
	sess := in.Session

	if in.Text == "" {
		in.Reply = promptReply(sess, requestsPrompt, requestsOptions)
		return
	}

	if containsAnyFold(in.Text, noRequestWords) {
		sess.Fields.SpecialRequests = ""
	} else {
		sess.Fields.SpecialRequests = in.Text
	}
	sess.Fields.RequestsCollected = true
	sess.Step = statex.StepConfirmation
	in.Reply = promptReply(sess, renderConfirmation(sess), confirmationOptions)
}

// advance moves the session to the first still-missing field, or to
// confirmation when everything is collected. An edited field therefore
// returns straight to the summary instead of re-walking the sequence.
func advance(in *GraphState, ack string) {
	sess := in.Session
	next := nextMissingStep(sess.Fields)
	sess.Step = next
	if next == statex.StepConfirmation {
		in.Reply = promptReply(sess, renderConfirmation(sess), confirmationOptions)
		return
	}
	in.Reply = promptReply(sess, ack+"\n\n"+promptFor(next), optionsFor(next))
}

func nextMissingStep(f statex.CollectedFields) statex.Step {
	switch {
	case f.Datetime == "":
		return statex.StepDatetimeInput
	case f.PartySize <= 0:
		return statex.StepPartySizeInput
	case f.Contact == nil:
		return statex.StepContactInfoInput
	case f.Email == "":
		return statex.StepEmailInput
	case !f.RequestsCollected:
		return statex.StepSpecialRequestsInput
	}
	return statex.StepConfirmation
}

func handleConfirmation(ctx context.Context, in *GraphState, deps Deps) {
	sess := in.Session

	// Intent priority: execute and cancel win over everything, so
	// "日時はそのままで実行" executes. Edit targets win over the bare
	// edit words, so "日時を修正" jumps straight to the field.
	switch {
	case strings.TrimSpace(in.Text) == "", strings.Contains(in.Text, "続行"):
		in.Reply = promptReply(sess, renderConfirmation(sess), confirmationOptions)

	case containsAnyFold(in.Text, executeWords):
		executeBooking(ctx, in, deps)

	case containsAnyFold(in.Text, cancelWords):
		sess.Step = statex.StepCancelled
		in.Reply = contractx.StepResult{
			Message:   cancelledMessage,
			Step:      sess.Step.String(),
			Cancelled: true,
		}

	case strings.Contains(in.Text, "日時"):
		sess.Step = statex.StepDatetimeInput
		in.Reply = promptReply(sess, datetimePrompt, datetimeOptions)

	case strings.Contains(in.Text, "人数"):
		sess.Step = statex.StepPartySizeInput
		in.Reply = promptReply(sess, partySizePrompt, partySizeOptions)

	case strings.Contains(in.Text, "名前"), strings.Contains(in.Text, "電話"), strings.Contains(in.Text, "連絡"):
		sess.Step = statex.StepContactInfoInput
		in.Reply = promptReply(sess, contactPrompt, nil)

	case strings.Contains(in.Text, "メール"):
		sess.Step = statex.StepEmailInput
		in.Reply = promptReply(sess, emailPrompt, nil)

	case strings.Contains(in.Text, "要望"):
		sess.Step = statex.StepSpecialRequestsInput
		in.Reply = promptReply(sess, requestsPrompt, requestsOptions)

	case containsAnyFold(in.Text, editWords):
		in.Reply = promptReply(sess, editMenu, nil)

	default:
		in.Reply = errorReply(sess, confirmationNotUnderstood, confirmationOptions)
	}
}

func executeBooking(ctx context.Context, in *GraphState, deps Deps) {
	sess := in.Session

	req, err := buildRequest(sess)
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("confirmation reached with incomplete fields")
		in.Reply = contractx.StepResult{
			Message:       "予約情報が不足しています。お手数ですが、最初からやり直してください。",
			Step:          sess.Step.String(),
			Error:         true,
			RestartNeeded: true,
		}
		return
	}

	driver, err := deps.Dispatcher.Dispatch(sess.Restaurant.Website)
	if err != nil {
		if !errors.Is(err, contractx.ErrUnsupportedSite) {
			log.Error().Err(err).Str("session_id", sess.ID).Msg("driver dispatch failed")
		}
		result := bookingx.UnsupportedResult(sess.Restaurant.Website, sess.Restaurant.Phone)
		sess.Result = &result
		sess.Step = statex.StepCompleted
		in.Reply = contractx.StepResult{
			Message:       renderBookingFailure(&result),
			Step:          sess.Step.String(),
			Options:       failureOptions(&result),
			BookingResult: &result,
		}
		return
	}

	log.Info().
		Str("session_id", sess.ID).
		Str("driver", driver.Name()).
		Str("date", req.Date).
		Str("time", req.Time).
		Int("party_size", req.PartySize).
		Msg("executing booking")

	result, err := driver.Run(ctx, req, sess.Restaurant.Website)
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("booking run failed")
		result = contractx.BookingResult{
			Success:   false,
			ErrorKind: contractx.ErrorKindSubmissionFailed,
			Message:   "予約処理を開始できませんでした。",
		}
	}
	sess.Result = &result

	switch {
	case result.Success:
		sess.Step = statex.StepCompleted
		in.Reply = contractx.StepResult{
			Message:       renderBookingSuccess(&result),
			Step:          sess.Step.String(),
			Success:       true,
			BookingResult: &result,
		}

	case result.ErrorKind == contractx.ErrorKindAIDetection:
		sess.Step = statex.StepAIBlocked
		in.Reply = contractx.StepResult{
			Message:       renderBookingFailure(&result),
			Step:          sess.Step.String(),
			Options:       failureOptions(&result),
			BookingResult: &result,
		}

	case result.SemiAutomated:
		sess.Step = statex.StepSemiAutomated
		in.Reply = contractx.StepResult{
			Message:       renderBookingFailure(&result),
			Step:          sess.Step.String(),
			Options:       failureOptions(&result),
			BookingResult: &result,
		}

	case result.ManualBookingRequired, result.ErrorKind == contractx.ErrorKindNotSupported:
		sess.Step = statex.StepCompleted
		in.Reply = contractx.StepResult{
			Message:       renderBookingFailure(&result),
			Step:          sess.Step.String(),
			Options:       failureOptions(&result),
			BookingResult: &result,
		}

	default:
		// Submission failures leave the session at confirmation so the
		// user can retry or cancel.
		in.Reply = contractx.StepResult{
			Message:       renderBookingFailure(&result),
			Step:          statex.StepCompleted.String(),
			Options:       failureOptions(&result),
			BookingResult: &result,
		}
	}
}

func buildRequest(sess *statex.ReservationSession) (contractx.BookingRequest, error) {
	dt := sess.Fields.Datetime
	if len(dt) < 16 || sess.Fields.PartySize <= 0 || sess.Fields.Contact == nil {
		return contractx.BookingRequest{}, fmt.Errorf("%w: collected fields are incomplete", contractx.ErrValidation)
	}

	contact := *sess.Fields.Contact
	contact.Email = sess.Fields.Email
	return contractx.BookingRequest{
		Date:            dt[:10],
		Time:            dt[11:16],
		PartySize:       sess.Fields.PartySize,
		Contact:         contact,
		SpecialRequests: sess.Fields.SpecialRequests,
	}, nil
}

func promptReply(sess *statex.ReservationSession, message string, options []string) contractx.StepResult {
	return contractx.StepResult{
		Message: message,
		Step:    sess.Step.String(),
		Options: options,
	}
}

func errorReply(sess *statex.ReservationSession, message string, options []string) contractx.StepResult {
	return contractx.StepResult{
		Message: message,
		Step:    sess.Step.String(),
		Options: options,
		Error:   true,
	}
}

func containsAnyFold(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
