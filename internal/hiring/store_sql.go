package hiring

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutJob(j Job) (Job, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = "open"
	}
	_, err := s.db.Exec(`INSERT INTO jobs (id,title,description,location,experience_min,experience_max,status,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			location=EXCLUDED.location, experience_min=EXCLUDED.experience_min,
			experience_max=EXCLUDED.experience_max, status=EXCLUDED.status`,
		j.ID, j.Title, j.Description, j.Location, j.ExperienceMin, j.ExperienceMax, j.Status, time.Now().Unix())
	return j, err
}

func (s *SQLStore) GetJob(id string) (Job, error) {
	row := s.db.QueryRow(`SELECT id,title,description,location,experience_min,experience_max,status,created_at FROM jobs WHERE id=$1`, id)
	var j Job
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Location, &j.ExperienceMin, &j.ExperienceMax, &j.Status, &j.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return j, nil
}

func (s *SQLStore) ListJobs(status string) ([]Job, error) {
	q := `SELECT id,title,description,location,experience_min,experience_max,status,created_at FROM jobs`
	args := []interface{}{}
	if status != "" {
		q += ` WHERE status=$1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.Location, &j.ExperienceMin, &j.ExperienceMax, &j.Status, &j.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteJob(id string) error {
	res, err := s.db.Exec(`DELETE FROM jobs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) PutRound(r Round) (Round, error) {
	if _, err := s.GetJob(r.JobID); err != nil {
		return Round{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`INSERT INTO rounds (id,job_id,round_number,round_type,title,description,is_mandatory)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET round_number=EXCLUDED.round_number, round_type=EXCLUDED.round_type,
			title=EXCLUDED.title, description=EXCLUDED.description, is_mandatory=EXCLUDED.is_mandatory`,
		r.ID, r.JobID, r.Number, string(r.Type), r.Title, r.Description, boolToInt(r.Mandatory))
	return r, err
}

func (s *SQLStore) ListRounds(jobID string) ([]Round, error) {
	rows, err := s.db.Query(`SELECT id,job_id,round_number,round_type,title,description,is_mandatory
		FROM rounds WHERE job_id=$1 ORDER BY round_number`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Round
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetRound(id string) (Round, error) {
	row := s.db.QueryRow(`SELECT id,job_id,round_number,round_type,title,description,is_mandatory FROM rounds WHERE id=$1`, id)
	r, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Round{}, ErrNotFound
	}
	return r, err
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanRound(row rowScanner) (Round, error) {
	var r Round
	var typ string
	var mandatory int
	if err := row.Scan(&r.ID, &r.JobID, &r.Number, &typ, &r.Title, &r.Description, &mandatory); err != nil {
		return Round{}, err
	}
	r.Type = RoundType(typ)
	r.Mandatory = mandatory != 0
	return r, nil
}

// Questions are stored as one JSON document per round, matching how the
// session consumes them: an ordered, read-only sequence.
func (s *SQLStore) PutQuestions(roundID string, qs []Question) ([]Question, error) {
	if _, err := s.GetRound(roundID); err != nil {
		return nil, err
	}
	existing, err := s.ListQuestions(roundID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	for _, q := range qs {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if err := q.Validate(); err != nil {
			return nil, err
		}
		existing = append(existing, q)
	}
	buf, err := json.Marshal(existing)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(`INSERT INTO round_questions (round_id,questions_json)
		VALUES ($1,$2)
		ON CONFLICT (round_id) DO UPDATE SET questions_json=EXCLUDED.questions_json`,
		roundID, string(buf))
	return existing, err
}

func (s *SQLStore) ListQuestions(roundID string) ([]Question, error) {
	row := s.db.QueryRow(`SELECT questions_json FROM round_questions WHERE round_id=$1`, roundID)
	var qjson string
	if err := row.Scan(&qjson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var qs []Question
	if err := json.Unmarshal([]byte(qjson), &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func (s *SQLStore) PutApplication(a Application) (Application, error) {
	if _, err := s.GetJob(a.JobID); err != nil {
		return Application{}, err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = "applied"
	}
	_, err := s.db.Exec(`INSERT INTO applications (id,job_id,candidate_id,status,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET status=EXCLUDED.status`,
		a.ID, a.JobID, a.CandidateID, a.Status, time.Now().Unix())
	return a, err
}

func (s *SQLStore) ListApplications(candidateID string) ([]Application, error) {
	rows, err := s.db.Query(`SELECT id,job_id,candidate_id,status,created_at
		FROM applications WHERE candidate_id=$1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutReport(r Report) (Report, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`INSERT INTO reports (id,job_id,round_id,candidate_id,score,max_score,cleared,time_in_seconds,response_json,feedback,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (job_id,round_id,candidate_id) DO UPDATE SET score=EXCLUDED.score,
			max_score=EXCLUDED.max_score, cleared=EXCLUDED.cleared,
			time_in_seconds=EXCLUDED.time_in_seconds, response_json=EXCLUDED.response_json,
			feedback=EXCLUDED.feedback`,
		r.ID, r.JobID, r.RoundID, r.CandidateID, r.Score, r.MaxScore, boolToInt(r.Cleared),
		r.TimeSec, r.ResponseJSON, r.Feedback, time.Now().Unix())
	return r, err
}

func (s *SQLStore) ListReports(jobID, roundID string) ([]Report, error) {
	q := `SELECT id,job_id,round_id,candidate_id,score,max_score,cleared,time_in_seconds,response_json,feedback,created_at FROM reports`
	var args []interface{}
	switch {
	case jobID != "" && roundID != "":
		q += ` WHERE job_id=$1 AND round_id=$2`
		args = append(args, jobID, roundID)
	case jobID != "":
		q += ` WHERE job_id=$1`
		args = append(args, jobID)
	case roundID != "":
		q += ` WHERE round_id=$1`
		args = append(args, roundID)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetReport(jobID, roundID, candidateID string) (Report, error) {
	row := s.db.QueryRow(`SELECT id,job_id,round_id,candidate_id,score,max_score,cleared,time_in_seconds,response_json,feedback,created_at
		FROM reports WHERE job_id=$1 AND round_id=$2 AND candidate_id=$3`, jobID, roundID, candidateID)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	return r, err
}

func scanReport(row rowScanner) (Report, error) {
	var r Report
	var cleared int
	if err := row.Scan(&r.ID, &r.JobID, &r.RoundID, &r.CandidateID, &r.Score, &r.MaxScore,
		&cleared, &r.TimeSec, &r.ResponseJSON, &r.Feedback, &r.CreatedAt); err != nil {
		return Report{}, err
	}
	r.Cleared = cleared != 0
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
