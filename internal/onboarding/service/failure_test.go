package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	onbmodels "onboard/internal/onboarding/models"
	"onboard/internal/onboarding/service"
	"onboard/internal/onboarding/service/mocks"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/sentinel"
)

// Unclassified collaborator failures must surface as a generic internal error,
// never as one of the user-recoverable kinds.
func TestCollaboratorFailuresAreInternal(t *testing.T) {
	ctrl := gomock.NewController(t)

	identities := mocks.NewMockIdentityStore(ctrl)
	verifier := mocks.NewMockVerificationGateway(ctrl)
	qualifications := mocks.NewMockQualificationRecorder(ctrl)
	credentials := mocks.NewMockCredentialStore(ctrl)
	accounts := mocks.NewMockAccountStore(ctrl)
	tokens := mocks.NewMockTokenIssuer(ctrl)

	svc := service.New(identities, verifier, qualifications, credentials, accounts, tokens)
	ctx := context.Background()

	t.Run("identity lookup failure on save", func(t *testing.T) {
		identities.EXPECT().FindByEmail(gomock.Any(), "a@x.com").
			Return(nil, errors.New("connection refused"))

		_, err := svc.Save(ctx, onbmodels.SaveSubmission{Email: "a@x.com"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("verification status failure on submit", func(t *testing.T) {
		identity := &onbmodels.Identity{}
		identities.EXPECT().FindByEmail(gomock.Any(), "a@x.com").Return(identity, nil)
		verifier.EXPECT().Status(gomock.Any(), identity.ID).
			Return(onbmodels.VerificationStatus{}, errors.New("gateway down"))

		sub := onbmodels.FinalizeSubmission{
			Email:           "a@x.com",
			Password:        "Str0ng!pass",
			Name:            "Ada",
			BusinessOptions: []string{"retail"},
			TermsAccepted:   true,
			PrivacyAccepted: true,
		}
		_, err := svc.Submit(ctx, sub)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("document claimed between check and commit", func(t *testing.T) {
		identity := &onbmodels.Identity{Email: "race@x.com"}
		identities.EXPECT().FindByEmail(gomock.Any(), "race@x.com").Return(identity, nil)
		verifier.EXPECT().Status(gomock.Any(), identity.ID).
			Return(onbmodels.VerificationStatus{EmailVerified: true, PhoneVerified: true}, nil)
		identities.EXPECT().FindByDocument(gomock.Any(), "BR", "52998224725").
			Return(nil, sentinel.ErrNotFound)
		credentials.EXPECT().FindByEmail(gomock.Any(), "race@x.com").
			Return(nil, sentinel.ErrNotFound)
		credentials.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		accounts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		// A concurrent finalize won the per-country document index.
		identities.EXPECT().Update(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		sub := onbmodels.FinalizeSubmission{
			Email:               "race@x.com",
			Password:            "Str0ng!pass",
			Name:                "Ada",
			Document:            "529.982.247-25",
			DocumentType:        "cpf",
			DocumentCountryCode: "BR",
			BusinessOptions:     []string{"retail"},
			TermsAccepted:       true,
			PrivacyAccepted:     true,
		}
		_, err := svc.Submit(ctx, sub)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDocumentAlreadyExists))
		details := dErrors.DetailsOf(err)
		assert.Equal(t, "cpf", details["documentType"])
		assert.Equal(t, "BR", details["documentCountryCode"])
	})

	t.Run("credential check failure on save", func(t *testing.T) {
		identities.EXPECT().FindByEmail(gomock.Any(), "b@x.com").
			Return(nil, sentinel.ErrNotFound)
		credentials.EXPECT().FindByEmail(gomock.Any(), "b@x.com").
			Return(nil, errors.New("connection refused"))

		_, err := svc.Save(ctx, onbmodels.SaveSubmission{Email: "b@x.com"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
