package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
)

func TestInjectedTxRunner(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name     string
		runner   *InjectedTxRunner
		body     error
		wantErr  error
		wantRan  bool
		commit   int
		rollback int
	}{
		{name: "commit", runner: &InjectedTxRunner{}, wantRan: true, commit: 1},
		{name: "body error", runner: &InjectedTxRunner{}, body: boom, wantErr: boom, wantRan: true, rollback: 1},
		{name: "commit failure", runner: &InjectedTxRunner{FailCommit: boom}, wantErr: boom, wantRan: true, rollback: 1},
		{name: "before body", runner: &InjectedTxRunner{FailBeforeBody: boom}, wantErr: boom, rollback: 1},
		{name: "begin failure", runner: &InjectedTxRunner{FailBegin: boom}, wantErr: boom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ran := false
			err := tc.runner.InTx(context.Background(), func(_ dbctx.Context) error {
				ran = true
				return tc.body
			})
			if !errors.Is(err, tc.wantErr) || (tc.wantErr == nil && err != nil) {
				t.Fatalf("err: want=%v got=%v", tc.wantErr, err)
			}
			if ran != tc.wantRan {
				t.Fatalf("body ran: want=%v got=%v", tc.wantRan, ran)
			}
			begin, commit, rollback := tc.runner.counts()
			if begin != 1 || commit != tc.commit || rollback != tc.rollback {
				t.Fatalf("counters: begin=%d commit=%d rollback=%d", begin, commit, rollback)
			}
		})
	}
}
