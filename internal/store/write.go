package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// Save replaces the stored state with s in one transaction.
// Implements engine.Repository.
func (s *Store) Save(ctx context.Context, st *ir.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save state: begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"active_programs", "statements", "programs", "functions", "variables"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("save state: clear %s: %w", table, err)
		}
	}

	if err := writePrograms(ctx, tx, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := writeFunctions(ctx, tx, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := writeVariables(ctx, tx, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save state: commit: %w", err)
	}
	return nil
}

func writePrograms(ctx context.Context, tx *sql.Tx, st *ir.State) error {
	for user, progs := range st.Programs {
		for pos, p := range progs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO programs (username, name, position)
				VALUES (?, ?, ?)
			`, user, p.Name, pos); err != nil {
				return fmt.Errorf("write program %s/%s: %w", user, p.Name, err)
			}

			for idx, stmt := range p.Statements {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO statements (username, program, idx, condition_expr, action_stmt)
					VALUES (?, ?, ?, ?, ?)
				`, user, p.Name, idx, stmt.Condition, stmt.Action); err != nil {
					return fmt.Errorf("write statement %s/%s[%d]: %w", user, p.Name, idx, err)
				}
			}
		}
	}

	for user, name := range st.Active {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO active_programs (username, program)
			VALUES (?, ?)
		`, user, name); err != nil {
			return fmt.Errorf("write active program of %s: %w", user, err)
		}
	}
	return nil
}

func writeFunctions(ctx context.Context, tx *sql.Tx, st *ir.State) error {
	for user, table := range st.Functions {
		for _, fn := range table {
			params, err := marshalParams(fn.Params)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO functions (username, name, params, body)
				VALUES (?, ?, ?, ?)
			`, user, fn.Name, params, fn.Body); err != nil {
				return fmt.Errorf("write function %s/%s: %w", user, fn.Name, err)
			}
		}
	}
	return nil
}

func writeVariables(ctx context.Context, tx *sql.Tx, st *ir.State) error {
	for user, table := range st.Variables {
		for name, v := range table {
			typ, text := encodeValue(v)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO variables (username, name, value_type, value)
				VALUES (?, ?, ?, ?)
			`, user, name, typ, text); err != nil {
				return fmt.Errorf("write variable %s/%s: %w", user, name, err)
			}
		}
	}
	return nil
}
