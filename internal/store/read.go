package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// Load reads the stored state. An empty database yields an empty state.
// Implements engine.Repository.
func (s *Store) Load(ctx context.Context) (*ir.State, error) {
	st := ir.NewState()

	if err := s.readPrograms(ctx, st); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if err := s.readFunctions(ctx, st); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if err := s.readVariables(ctx, st); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	return st, nil
}

func (s *Store) readPrograms(ctx context.Context, st *ir.State) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, name
		FROM programs
		ORDER BY username COLLATE BINARY ASC, position ASC
	`)
	if err != nil {
		return fmt.Errorf("query programs: %w", err)
	}
	err = eachRow(rows, func() error {
		var user, name string
		if err := rows.Scan(&user, &name); err != nil {
			return err
		}
		st.AddProgram(user, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("read programs: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT username, program, condition_expr, action_stmt
		FROM statements
		ORDER BY username COLLATE BINARY ASC, program COLLATE BINARY ASC, idx ASC
	`)
	if err != nil {
		return fmt.Errorf("query statements: %w", err)
	}
	err = eachRow(rows, func() error {
		var user, name string
		var stmt ir.Statement
		if err := rows.Scan(&user, &name, &stmt.Condition, &stmt.Action); err != nil {
			return err
		}
		p, _ := st.Program(user, name)
		if p == nil {
			return fmt.Errorf("statement of unknown program %s/%s", user, name)
		}
		p.Statements = append(p.Statements, stmt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("read statements: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT username, program FROM active_programs`)
	if err != nil {
		return fmt.Errorf("query active programs: %w", err)
	}
	err = eachRow(rows, func() error {
		var user, name string
		if err := rows.Scan(&user, &name); err != nil {
			return err
		}
		st.Active[user] = name
		return nil
	})
	if err != nil {
		return fmt.Errorf("read active programs: %w", err)
	}
	return nil
}

func (s *Store) readFunctions(ctx context.Context, st *ir.State) error {
	rows, err := s.db.QueryContext(ctx, `SELECT username, name, params, body FROM functions`)
	if err != nil {
		return fmt.Errorf("query functions: %w", err)
	}
	err = eachRow(rows, func() error {
		var user, params string
		fn := &ir.Function{}
		if err := rows.Scan(&user, &fn.Name, &params, &fn.Body); err != nil {
			return err
		}
		names, err := unmarshalParams(params)
		if err != nil {
			return fmt.Errorf("function %s/%s: %w", user, fn.Name, err)
		}
		fn.Params = names
		st.SetFunction(user, fn)
		return nil
	})
	if err != nil {
		return fmt.Errorf("read functions: %w", err)
	}
	return nil
}

func (s *Store) readVariables(ctx context.Context, st *ir.State) error {
	rows, err := s.db.QueryContext(ctx, `SELECT username, name, value_type, value FROM variables`)
	if err != nil {
		return fmt.Errorf("query variables: %w", err)
	}
	err = eachRow(rows, func() error {
		var user, name, typ, text string
		if err := rows.Scan(&user, &name, &typ, &text); err != nil {
			return err
		}
		v, err := decodeValue(typ, text)
		if err != nil {
			return fmt.Errorf("variable %s/%s: %w", user, name, err)
		}
		st.SetVariable(user, name, v)
		return nil
	})
	if err != nil {
		return fmt.Errorf("read variables: %w", err)
	}
	return nil
}

// eachRow calls fn for every row and closes rows.
func eachRow(rows *sql.Rows, fn func() error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(); err != nil {
			return err
		}
	}
	return rows.Err()
}
