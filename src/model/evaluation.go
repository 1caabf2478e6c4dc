package model

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/username/jamtax/src/models"
)

// ErrEvaluationNotFound is returned when no stored evaluation has the requested ID.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// Evaluation is a stored comparison run.
type Evaluation struct {
	ID                   string                  `json:"id"`
	Label                string                  `json:"label"`
	Input                models.EvaluationInput  `json:"input"`
	Report               models.ComparisonReport `json:"report"`
	RecommendedStructure string                  `json:"recommended_structure"`
	RecommendedNetUSD    string                  `json:"recommended_net_usd"`
	InputHash            string                  `json:"input_hash"`
	CreatedAt            time.Time               `json:"created_at"`
}

// EvaluationSummary is the listing view of a stored evaluation.
type EvaluationSummary struct {
	ID                   string    `json:"id"`
	Label                string    `json:"label"`
	RecommendedStructure string    `json:"recommended_structure"`
	RecommendedNetUSD    string    `json:"recommended_net_usd"`
	CreatedAt            time.Time `json:"created_at"`
}

// CreateEvaluation inserts e, assigning its ID and CreatedAt.
func CreateEvaluation(db *sql.DB, e *Evaluation) error {
	inputJSON, err := json.Marshal(e.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation input: %w", err)
	}
	reportJSON, err := json.Marshal(e.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal comparison report: %w", err)
	}

	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	if len(e.Report.Results) > 0 {
		e.RecommendedStructure = e.Report.RecommendedStructure
		e.RecommendedNetUSD = e.Report.Recommended().USDNetAfterUSTax.Value.StringFixed(2)
	}

	query := `
	INSERT INTO evaluations (id, label, input_json, report_json, recommended_structure, recommended_net_usd, input_hash, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(e.ID, e.Label, string(inputJSON), string(reportJSON), e.RecommendedStructure, e.RecommendedNetUSD, e.InputHash, e.CreatedAt)
	return err
}

// GetEvaluationByID retrieves one stored evaluation.
func GetEvaluationByID(db *sql.DB, id string) (*Evaluation, error) {
	query := `
	SELECT id, label, input_json, report_json, recommended_structure, recommended_net_usd, input_hash, created_at
	FROM evaluations
	WHERE id = ?`

	var (
		e          Evaluation
		label      sql.NullString
		inputJSON  string
		reportJSON string
	)
	err := db.QueryRow(query, id).Scan(&e.ID, &label, &inputJSON, &reportJSON, &e.RecommendedStructure, &e.RecommendedNetUSD, &e.InputHash, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEvaluationNotFound
		}
		return nil, err
	}
	e.Label = label.String
	if err := json.Unmarshal([]byte(inputJSON), &e.Input); err != nil {
		return nil, fmt.Errorf("failed to decode stored input for evaluation %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(reportJSON), &e.Report); err != nil {
		return nil, fmt.Errorf("failed to decode stored report for evaluation %s: %w", id, err)
	}
	return &e, nil
}

// ListEvaluations returns the most recent evaluations, newest first.
func ListEvaluations(db *sql.DB, limit int) ([]EvaluationSummary, error) {
	rows, err := db.Query(`
	SELECT id, label, recommended_structure, recommended_net_usd, created_at
	FROM evaluations
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying evaluations: %w", err)
	}
	defer rows.Close()

	summaries := []EvaluationSummary{}
	for rows.Next() {
		var s EvaluationSummary
		var label sql.NullString
		if err := rows.Scan(&s.ID, &label, &s.RecommendedStructure, &s.RecommendedNetUSD, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning evaluation row: %w", err)
		}
		s.Label = label.String
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over evaluation rows: %w", err)
	}
	return summaries, nil
}
