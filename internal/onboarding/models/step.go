package models

// Step labels the user's current position in the onboarding flow. Steps are
// never stored: they are derived from which fields are populated, so the
// projection can never diverge from the underlying data.
type Step string

const (
	StepEmail               Step = "email"
	StepDocument            Step = "document"
	StepName                Step = "name"
	StepPhone               Step = "phone"
	StepPhoneVerification   Step = "phone_verification"
	StepEmailVerification   Step = "email_verification"
	StepPassword            Step = "password"
	StepActiveCustomers     Step = "active_customers"
	StepFinancialOperations Step = "financial_operations"
	StepCapital             Step = "capital"
	StepBusinessDuration    Step = "business_duration"
	StepBusinessOptions     Step = "business_options"
	StepAddress             Step = "address"
	StepCompleted           Step = "completed"
)

// stepOrder is the canonical forward progression of the onboarding UI, least
// to most advanced. InferStep walks it backwards; this ordering is a wire
// contract and must not be reshuffled.
var stepOrder = []Step{
	StepEmail,
	StepDocument,
	StepName,
	StepPhone,
	StepPhoneVerification,
	StepEmailVerification,
	StepPassword,
	StepActiveCustomers,
	StepFinancialOperations,
	StepCapital,
	StepBusinessDuration,
	StepBusinessOptions,
	StepAddress,
	StepCompleted,
}

var stepIndex = func() map[Step]int {
	m := make(map[Step]int, len(stepOrder))
	for i, s := range stepOrder {
		m[s] = i
	}
	return m
}()

// Index returns the step's position in the canonical progression.
func (s Step) Index() int { return stepIndex[s] }

// AtLeast reports whether s is at or past other in the progression.
func (s Step) AtLeast(other Step) bool { return s.Index() >= other.Index() }

// InferStep derives the current step from the identity snapshot and its
// qualification answers (keyed by question). The most advanced satisfied
// condition wins.
func InferStep(identity *Identity, answers map[string]string) Step {
	checks := []struct {
		step Step
		hit  bool
	}{
		{StepCompleted, identity.IsFinalized()},
		{StepAddress, identity.PostalAddress != nil},
		{StepBusinessOptions, answers[QuestionBusinessType] != ""},
		{StepBusinessDuration, answers[QuestionBusinessDuration] != ""},
		{StepCapital, answers[QuestionWorkingCapital] != ""},
		{StepFinancialOperations, answers[QuestionFinancialOperations] != ""},
		{StepActiveCustomers, answers[QuestionActiveCustomers] != ""},
		{StepPassword, identity.PendingSecrets.Password != ""},
		{StepEmailVerification, identity.PendingSecrets.EmailCode != ""},
		{StepPhoneVerification, identity.PendingSecrets.PhoneCode != ""},
		{StepPhone, identity.PhoneNumber != ""},
		{StepName, identity.Name != ""},
		{StepDocument, identity.Document != ""},
	}

	for _, c := range checks {
		if c.hit {
			return c.step
		}
	}
	return StepEmail
}
