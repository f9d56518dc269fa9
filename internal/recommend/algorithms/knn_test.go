// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package algorithms

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/songrec/internal/recommend"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// trainFixture trains on the reference fixture without a hold-out so every
// triplet is in the model.
func trainFixture(t *testing.T) (*KNNModel, *recommend.InteractionTable) {
	t.Helper()

	table := fixtureTable(t)
	cfg := DefaultKNNConfig()
	cfg.TestFraction = 0
	knn := NewUserKNN(cfg)

	ts, err := knn.Prepare(table)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	model, err := knn.Train(context.Background(), ts)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return model, table
}

func TestNewUserKNN(t *testing.T) {
	tests := []struct {
		name   string
		cfg    KNNConfig
		verify func(t *testing.T, k *UserKNN)
	}{
		{
			name: "applies defaults for zero config",
			cfg:  KNNConfig{},
			verify: func(t *testing.T, k *UserKNN) {
				if k.config.K != 50 {
					t.Errorf("K = %d, want 50", k.config.K)
				}
				if k.config.MinK != 1 || k.config.MinSupport != 1 {
					t.Errorf("MinK/MinSupport = %d/%d, want 1/1", k.config.MinK, k.config.MinSupport)
				}
				if k.config.DefaultTopN != 5 {
					t.Errorf("DefaultTopN = %d, want 5", k.config.DefaultTopN)
				}
			},
		},
		{
			name: "uses provided config values",
			cfg:  KNNConfig{K: 10, MaxCandidates: 7, TestFraction: 0.5},
			verify: func(t *testing.T, k *UserKNN) {
				if k.config.K != 10 {
					t.Errorf("K = %d, want 10", k.config.K)
				}
				if k.config.MaxCandidates != 7 {
					t.Errorf("MaxCandidates = %d, want 7", k.config.MaxCandidates)
				}
				if k.config.TestFraction != 0.5 {
					t.Errorf("TestFraction = %f, want 0.5", k.config.TestFraction)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewUserKNN(tt.cfg)
			if k.Name() != "user_knn" {
				t.Errorf("Name() = %q, want %q", k.Name(), "user_knn")
			}
			tt.verify(t, k)
		})
	}
}

func TestUserKNN_Prepare(t *testing.T) {
	t.Run("fixture", func(t *testing.T) {
		ts, err := NewUserKNN(KNNConfig{}).Prepare(fixtureTable(t))
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if ts.Len() != 4 || ts.Users() != 2 || ts.Songs() != 3 {
			t.Errorf("Prepare() = %d triplets, %d users, %d songs, want 4/2/3", ts.Len(), ts.Users(), ts.Songs())
		}
		want := Rating{UserID: "u1", SongID: "s1", Value: 5}
		if got := ts.Ratings()[0]; got != want {
			t.Errorf("Ratings()[0] = %+v, want %+v", got, want)
		}
	})

	t.Run("duplicates are summed", func(t *testing.T) {
		table := buildTable(t, []play{{"u1", "s1", 2}, {"u2", "s1", 1}, {"u1", "s1", 3}}, nil)
		ts, err := NewUserKNN(KNNConfig{}).Prepare(table)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		want := []Rating{{UserID: "u1", SongID: "s1", Value: 5}, {UserID: "u2", SongID: "s1", Value: 1}}
		if got := ts.Ratings(); !reflect.DeepEqual(got, want) {
			t.Errorf("Ratings() = %+v, want %+v", got, want)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name  string
			table *recommend.InteractionTable
		}{
			{"nil table", nil},
			{"zero play count", recommend.NewInteractionTable([]recommend.InteractionRow{{UserID: "u1", SongID: "s1"}})},
			{"empty user id", recommend.NewInteractionTable([]recommend.InteractionRow{{SongID: "s1", PlayCount: 1}})},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewUserKNN(KNNConfig{}).Prepare(tt.table)
				if !errors.Is(err, recommend.ErrPrepare) {
					t.Errorf("Prepare() error = %v, want ErrPrepare", err)
				}
			})
		}
	})
}

func TestUserKNN_Train_Fixture(t *testing.T) {
	model, _ := trainFixture(t)

	if model.Users() != 2 || model.Songs() != 3 {
		t.Errorf("model = %d users, %d songs, want 2/3", model.Users(), model.Songs())
	}
	if !almostEqual(model.GlobalMean(), 2.75) {
		t.Errorf("GlobalMean() = %f, want 2.75", model.GlobalMean())
	}
	if nb, err := model.Neighbors("u2", 1); err != nil || len(nb) != 1 || !almostEqual(nb[0].Similarity, 1) || !almostEqual(nb[0].MeanRating, 3) {
		t.Errorf("Neighbors(u2) = %+v, %v, want u1 with similarity 1 and mean 3", nb, err)
	}
	if model.TrainSize() != 4 || model.TestSize() != 0 {
		t.Errorf("TrainSize/TestSize = %d/%d, want 4/0", model.TrainSize(), model.TestSize())
	}
	if eval := model.Evaluation(); eval.Count != 0 {
		t.Errorf("Evaluation().Count = %d, want 0 without hold-out", eval.Count)
	}
}

func TestKNNModel_Neighbors(t *testing.T) {
	table := buildTable(t,
		[]play{
			{"a", "s1", 1}, {"a", "s2", 1},
			{"c", "s1", 1}, {"c", "s2", 1},
			{"b", "s1", 1}, {"b", "s2", 1},
			{"d", "s1", 2}, {"d", "s2", 1},
			{"e", "s3", 4},
		},
		nil,
	)
	cfg := DefaultKNNConfig()
	cfg.TestFraction = 0
	knn := NewUserKNN(cfg)
	ts, err := knn.Prepare(table)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	model, err := knn.Train(context.Background(), ts)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	t.Run("ordered by similarity then user id", func(t *testing.T) {
		got, err := model.Neighbors("a", 0)
		if err != nil {
			t.Fatalf("Neighbors() error = %v", err)
		}
		wantIDs := []string{"b", "c", "d"}
		wantSims := []float64{1, 1, 3 / math.Sqrt(10)}
		if len(got) != len(wantIDs) {
			t.Fatalf("Neighbors(a) = %+v, want %v", got, wantIDs)
		}
		for i := range wantIDs {
			if got[i].UserID != wantIDs[i] || !almostEqual(got[i].Similarity, wantSims[i]) {
				t.Errorf("Neighbors(a)[%d] = %+v, want %s %f", i, got[i], wantIDs[i], wantSims[i])
			}
		}
		if !almostEqual(got[2].MeanRating, 1.5) {
			t.Errorf("MeanRating(d) = %f, want 1.5", got[2].MeanRating)
		}
	})

	t.Run("truncated to n", func(t *testing.T) {
		got, err := model.Neighbors("a", 1)
		if err != nil {
			t.Fatalf("Neighbors() error = %v", err)
		}
		if len(got) != 1 || got[0].UserID != "b" {
			t.Errorf("Neighbors(a, 1) = %+v, want [b]", got)
		}
	})

	t.Run("user without overlap has no neighbors", func(t *testing.T) {
		got, err := model.Neighbors("e", 5)
		if err != nil {
			t.Fatalf("Neighbors() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Neighbors(e) = %+v, want empty", got)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := model.Neighbors("zz", 5); !errors.Is(err, recommend.ErrNotFound) {
			t.Errorf("Neighbors(zz) error = %v, want ErrNotFound", err)
		}
	})
}

func TestKNNModel_Predict(t *testing.T) {
	model, _ := trainFixture(t)

	tests := []struct {
		name           string
		user, song     string
		wantEstimate   float64
		wantActualK    int
		wantImpossible bool
	}{
		{"mean centered neighbor estimate", "u1", "s3", 2.5, 1, false},
		{"estimate clipped to observed range", "u2", "s2", 1, 1, false},
		{"own rating is not a neighbor", "u1", "s1", 3.5, 1, false},
		{"unknown song falls back to global mean", "u1", "s9", 2.75, 0, true},
		{"unknown user falls back to global mean", "u9", "s1", 2.75, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := model.Predict(tt.user, tt.song)
			if tt.wantImpossible {
				if !errors.Is(err, recommend.ErrPrediction) {
					t.Errorf("Predict() error = %v, want ErrPrediction", err)
				}
			} else if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}

			if !almostEqual(pred.Estimate, tt.wantEstimate) {
				t.Errorf("Estimate = %f, want %f", pred.Estimate, tt.wantEstimate)
			}
			if pred.ActualK != tt.wantActualK {
				t.Errorf("ActualK = %d, want %d", pred.ActualK, tt.wantActualK)
			}
			if pred.WasImpossible != tt.wantImpossible {
				t.Errorf("WasImpossible = %v, want %v", pred.WasImpossible, tt.wantImpossible)
			}
		})
	}
}

func TestKNNModel_Recommend_Fixture(t *testing.T) {
	model, table := trainFixture(t)
	ctx := context.Background()

	t.Run("known user", func(t *testing.T) {
		got, err := model.Recommend(ctx, "u1", table, 5)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(got) != 1 || got[0].SongID != "s3" || !almostEqual(got[0].EstimatedScore, 2.5) {
			t.Errorf("Recommend(u1) = %+v, want [s3 2.5]", got)
		}
		if got[0].Fallback {
			t.Error("Fallback = true for a neighborhood estimate")
		}
	})

	t.Run("cold start user ranks by song id", func(t *testing.T) {
		got, err := model.Recommend(ctx, "u9", table, 0)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		wantIDs := []string{"s1", "s2", "s3"}
		for i, id := range wantIDs {
			if got[i].SongID != id || !got[i].Fallback || !almostEqual(got[i].EstimatedScore, 2.75) {
				t.Errorf("Recommend(u9)[%d] = %+v, want %s fallback 2.75", i, got[i], id)
			}
		}
	})

	t.Run("nil table", func(t *testing.T) {
		if _, err := model.Recommend(ctx, "u1", nil, 5); !errors.Is(err, recommend.ErrPrepare) {
			t.Errorf("Recommend(nil) error = %v, want ErrPrepare", err)
		}
	})
}

func TestKNNModel_Recommend_Properties(t *testing.T) {
	table := syntheticTable(t, 30, 24)
	knn := NewUserKNN(DefaultKNNConfig())

	ts, err := knn.Prepare(table)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	model, err := knn.Train(context.Background(), ts)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	for _, userID := range table.UserIDs() {
		recs, err := model.Recommend(context.Background(), userID, table, 5)
		if err != nil {
			t.Fatalf("Recommend(%s) error = %v", userID, err)
		}
		if len(recs) > 5 {
			t.Errorf("Recommend(%s) returned %d songs, want <= 5", userID, len(recs))
		}
		for i, r := range recs {
			if table.HasPlayed(userID, r.SongID) {
				t.Errorf("Recommend(%s) returned played song %s", userID, r.SongID)
			}
			if i > 0 {
				prev := recs[i-1]
				if r.EstimatedScore > prev.EstimatedScore ||
					(r.EstimatedScore == prev.EstimatedScore && r.SongID < prev.SongID) {
					t.Errorf("Recommend(%s) not ordered at %d: %+v after %+v", userID, i, r, prev)
				}
			}
		}
	}

	eval := model.Evaluation()
	if eval.Count != ts.Len()-model.TrainSize() {
		t.Errorf("Evaluation().Count = %d, want %d", eval.Count, ts.Len()-model.TrainSize())
	}
	if eval.RMSE+floatTolerance < eval.MAE {
		t.Errorf("RMSE %f < MAE %f", eval.RMSE, eval.MAE)
	}
	if len(eval.Predictions) != eval.Count {
		t.Errorf("len(Predictions) = %d, want %d", len(eval.Predictions), eval.Count)
	}
}

func TestKNNModel_Recommend_CandidateCap(t *testing.T) {
	table := syntheticTable(t, 20, 18)
	cfg := DefaultKNNConfig()
	cfg.MaxCandidates = 3
	knn := NewUserKNN(cfg)

	ts, _ := knn.Prepare(table)
	model, err := knn.Train(context.Background(), ts)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	userID := "u005"
	allowed := make(map[string]bool)
	for _, songID := range table.SongIDs() {
		if table.HasPlayed(userID, songID) {
			continue
		}
		allowed[songID] = true
		if len(allowed) == cfg.MaxCandidates {
			break
		}
	}

	recs, err := model.Recommend(context.Background(), userID, table, 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != cfg.MaxCandidates {
		t.Errorf("len(Recommend()) = %d, want %d", len(recs), cfg.MaxCandidates)
	}
	for _, r := range recs {
		if !allowed[r.SongID] {
			t.Errorf("Recommend() scored %s outside the first %d candidates", r.SongID, cfg.MaxCandidates)
		}
	}
}

func TestUserKNN_Train_Deterministic(t *testing.T) {
	table := syntheticTable(t, 25, 20)

	train := func(workers int) *KNNModel {
		cfg := DefaultKNNConfig()
		cfg.NumWorkers = workers
		knn := NewUserKNN(cfg)
		ts, _ := knn.Prepare(table)
		model, err := knn.Train(context.Background(), ts)
		if err != nil {
			t.Fatalf("Train(workers=%d) error = %v", workers, err)
		}
		return model
	}

	a, b := train(1), train(8)
	if !reflect.DeepEqual(a.Evaluation(), b.Evaluation()) {
		t.Error("evaluation differs between worker counts")
	}
	if !reflect.DeepEqual(a.sims, b.sims) {
		t.Error("similarities differ between worker counts")
	}
}

func TestUserKNN_Train_HoldOut(t *testing.T) {
	table := fixtureTable(t)
	knn := NewUserKNN(DefaultKNNConfig())

	ts, _ := knn.Prepare(table)
	model, err := knn.Train(context.Background(), ts)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if model.TestSize() != 1 || model.TrainSize() != 3 {
		t.Errorf("TestSize/TrainSize = %d/%d, want 1/3", model.TestSize(), model.TrainSize())
	}
	eval := model.Evaluation()
	if eval.Count != 1 {
		t.Fatalf("Evaluation().Count = %d, want 1", eval.Count)
	}
	if !almostEqual(eval.RMSE, eval.MAE) {
		t.Errorf("single prediction RMSE %f != MAE %f", eval.RMSE, eval.MAE)
	}
}

func TestUserKNN_Train_Errors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   func(*KNNConfig)
		plays []play
		nilTS bool
	}{
		{name: "nil training set", nilTS: true},
		{name: "single user", plays: []play{{"u1", "s1", 1}, {"u1", "s2", 4}}},
		{name: "no triplets", plays: nil},
		{name: "test fraction of one", cfg: func(c *KNNConfig) { c.TestFraction = 1 }, plays: []play{{"u1", "s1", 1}, {"u2", "s1", 4}}},
		{name: "negative test fraction", cfg: func(c *KNNConfig) { c.TestFraction = -0.5 }, plays: []play{{"u1", "s1", 1}, {"u2", "s1", 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultKNNConfig()
			cfg.TestFraction = 0
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			knn := NewUserKNN(cfg)

			var ts *TrainingSet
			if !tt.nilTS {
				var err error
				ts, err = knn.Prepare(buildTable(t, tt.plays, nil))
				if err != nil {
					t.Fatalf("Prepare() error = %v", err)
				}
			}

			model, err := knn.Train(context.Background(), ts)
			if !errors.Is(err, recommend.ErrTrain) {
				t.Errorf("Train() error = %v, want ErrTrain", err)
			}
			if model != nil {
				t.Error("Train() returned a model on failure")
			}
		})
	}
}

func TestUserKNN_Train_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	knn := NewUserKNN(DefaultKNNConfig())
	ts, _ := knn.Prepare(syntheticTable(t, 10, 10))
	_, err := knn.Train(ctx, ts)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Train() error = %v, want context.Canceled", err)
	}
	if kind := recommend.KindOf(err); kind != recommend.KindTrain {
		t.Errorf("KindOf(Train() error) = %v, want %v", kind, recommend.KindTrain)
	}
}

func TestKNNModel_Recommend_Cancelled(t *testing.T) {
	model, table := trainFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := model.Recommend(ctx, "u1", table, 5)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Recommend() error = %v, want context.Canceled", err)
	}
	if kind := recommend.KindOf(err); kind != recommend.KindPrediction {
		t.Errorf("KindOf(Recommend() error) = %v, want %v", kind, recommend.KindPrediction)
	}
}

func TestTrainTestSplit(t *testing.T) {
	ratings := make([]Rating, 10)
	for i := range ratings {
		ratings[i] = Rating{UserID: "u", SongID: string(rune('a' + i)), Value: float64(i + 1)}
	}

	train, test := trainTestSplit(ratings, 0.25, 42)
	if len(test) != 3 || len(train) != 7 {
		t.Fatalf("split = %d train / %d test, want 7/3", len(train), len(test))
	}

	seen := make(map[string]int)
	for _, r := range append(append([]Rating(nil), train...), test...) {
		seen[r.SongID]++
	}
	for _, r := range ratings {
		if seen[r.SongID] != 1 {
			t.Errorf("rating %s appears %d times across partitions, want 1", r.SongID, seen[r.SongID])
		}
	}

	for i := 1; i < len(train); i++ {
		if train[i].SongID < train[i-1].SongID {
			t.Errorf("train partition not in input order at %d", i)
		}
	}

	train2, test2 := trainTestSplit(ratings, 0.25, 42)
	if !reflect.DeepEqual(train, train2) || !reflect.DeepEqual(test, test2) {
		t.Error("split with the same seed is not reproducible")
	}

	allTrain, none := trainTestSplit(ratings, 0, 42)
	if len(none) != 0 || len(allTrain) != len(ratings) {
		t.Errorf("zero fraction split = %d/%d, want %d/0", len(allTrain), len(none), len(ratings))
	}
}

func TestAccuracy(t *testing.T) {
	preds := []recommend.HeldOutPrediction{
		{Prediction: recommend.Prediction{Estimate: 3}, Actual: 1},
		{Prediction: recommend.Prediction{Estimate: 2, WasImpossible: true}, Actual: 2},
	}

	eval := Accuracy(preds)
	if eval.Count != 2 || eval.Impossible != 1 {
		t.Errorf("Count/Impossible = %d/%d, want 2/1", eval.Count, eval.Impossible)
	}
	if !almostEqual(eval.RMSE, math.Sqrt(2)) {
		t.Errorf("RMSE = %f, want %f", eval.RMSE, math.Sqrt(2))
	}
	if !almostEqual(eval.MAE, 1) {
		t.Errorf("MAE = %f, want 1", eval.MAE)
	}

	if empty := Accuracy(nil); empty.Count != 0 || empty.RMSE != 0 {
		t.Errorf("Accuracy(nil) = %+v, want zero", empty)
	}
}
