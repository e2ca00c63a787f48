//go:build integration
// +build integration

package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/ammerola/api-framework/internal/adapters/db"
	"github.com/ammerola/api-framework/test/helpers"
)

const insertPerson = "INSERT INTO people (id, fname, lname, age, email) VALUES ($1, $2, $3, $4, $5)"

// peopleArgs builds n insert tuples with ids starting at first.
func peopleArgs(first, n int) [][]any {
	args := make([][]any, n)
	for i := range args {
		id := first + i
		args[i] = []any{id, fmt.Sprintf("Bench%d", id), "Runner", 20 + id%50, nil}
	}
	return args
}

func BenchmarkDatabaseOperations(b *testing.B) {
	testDB := helpers.SetupTestDB(b)
	database := testDB.Database
	ctx := context.Background()

	helpers.TruncatePeople(b, database)
	if _, err := database.ExecuteBatch(ctx, insertPerson, peopleArgs(1, 100)); err != nil {
		b.Fatal(err)
	}

	b.Run("QueryOne", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := database.QueryOne(ctx, "SELECT fname, age FROM people WHERE id = $1", 1+i%100); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("QueryDict", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := database.QueryDict(ctx, "SELECT * FROM people ORDER BY id LIMIT 50"); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Execute", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := database.Execute(ctx, "UPDATE people SET age = age WHERE id = $1", 1+i%100); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("ExecuteBatch", func(b *testing.B) {
		next := 1000
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := database.ExecuteBatch(ctx, insertPerson, peopleArgs(next, 10)); err != nil {
				b.Fatal(err)
			}
			next += 10
		}
	})

	b.Run("ParallelWithConn", func(b *testing.B) {
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				err := database.WithConn(ctx, func(conn *db.Conn) error {
					_, err := conn.QueryOne(ctx, "SELECT COUNT(*) FROM people")
					return err
				})
				if err != nil {
					b.Error(err)
					return
				}
			}
		})
	})
}
