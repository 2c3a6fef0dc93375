package compiler

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"
	"nikand.dev/go/heap"
	"tlog.app/go/tlog"
)

type (
	// Result of one compile unit. Out is nil if Err is set.
	Result struct {
		Name string
		Out  []byte
		Err  error
	}

	job struct {
		idx  int
		size int64
	}
)

// CompileFiles compiles each file as an independent unit on up to jobs workers.
// Larger files start first. Results are in the order of names,
// and a failing unit never affects the others.
func CompileFiles(ctx context.Context, names []string, target Target, jobs int) []Result {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile files", "files", len(names), "target", target, "jobs", jobs)
	defer tr.Finish()

	res := make([]Result, len(names))

	q := heap.Heap[job]{Less: jobsLess}

	for i, n := range names {
		res[i].Name = n

		var size int64

		if inf, err := os.Stat(n); err == nil {
			size = inf.Size()
		}

		q.Push(job{idx: i, size: size})
	}

	var g errgroup.Group

	if jobs > 0 {
		g.SetLimit(jobs)
	}

	for q.Len() != 0 {
		j := q.Pop()

		g.Go(func() error {
			res[j.idx].Out, res[j.idx].Err = compileUnit(ctx, names[j.idx], target)

			return nil
		})
	}

	_ = g.Wait()

	failed := 0

	for _, r := range res {
		if r.Err != nil {
			failed++
		}
	}

	tr.Printw("compiled files", "ok", len(res)-failed, "failed", failed)

	return res
}

func compileUnit(ctx context.Context, name string, target Target) (obj []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile unit", "name", name)
	defer tr.Finish("err", &err)

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	return CompileFile(ctx, name, target)
}

func jobsLess(d []job, i, j int) bool {
	if d[i].size != d[j].size {
		return d[i].size > d[j].size
	}

	return d[i].idx < d[j].idx
}
