package qualification

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"onboard/internal/onboarding/models"
)

// Postgres persists qualification answers over a pgx pool.
//
// Expected schema:
//
//	CREATE TABLE qualification_answers (
//	    subject_id   TEXT NOT NULL,
//	    question_key TEXT NOT NULL,
//	    answer       TEXT NOT NULL,
//	    score        INTEGER,
//	    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    PRIMARY KEY (subject_id, question_key)
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) UpsertAnswers(ctx context.Context, subjectID string, answers []models.QualificationAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, answer := range answers {
		batch.Queue(`
			INSERT INTO qualification_answers (subject_id, question_key, answer, score, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (subject_id, question_key)
			DO UPDATE SET answer = EXCLUDED.answer, score = EXCLUDED.score, updated_at = NOW()`,
			subjectID, answer.QuestionKey, answer.Answer, answer.Score)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert qualification answers: %w", err)
	}
	return nil
}

func (s *Postgres) FindBySubject(ctx context.Context, subjectID string) ([]models.QualificationAnswer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT subject_id, question_key, answer, score
		FROM qualification_answers
		WHERE subject_id = $1`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("find qualification answers: %w", err)
	}
	defer rows.Close()

	var answers []models.QualificationAnswer
	for rows.Next() {
		var answer models.QualificationAnswer
		if err := rows.Scan(&answer.SubjectID, &answer.QuestionKey, &answer.Answer, &answer.Score); err != nil {
			return nil, fmt.Errorf("scan qualification answer: %w", err)
		}
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read qualification answers: %w", err)
	}
	return answers, nil
}

// RekeySubject re-owns every answer from oldID to newID. The UPDATE is
// idempotent, so a replayed finalize after a partial failure converges. When
// newID already holds an answer for the same question, the re-keyed row is
// dropped rather than duplicated.
func (s *Postgres) RekeySubject(ctx context.Context, oldID, newID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("rekey qualification answers: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE qualification_answers AS src
		SET subject_id = $2, updated_at = NOW()
		WHERE src.subject_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM qualification_answers AS dst
			WHERE dst.subject_id = $2 AND dst.question_key = src.question_key
		  )`, oldID, newID)
	if err != nil {
		return fmt.Errorf("rekey qualification answers: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM qualification_answers WHERE subject_id = $1`, oldID); err != nil {
		return fmt.Errorf("drop superseded qualification answers: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("rekey qualification answers: %w", err)
	}
	return nil
}
