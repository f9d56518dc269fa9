// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package algorithms

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/songrec/internal/recommend"
)

// KNNConfig contains configuration for user-based k-NN with means.
type KNNConfig struct {
	// K is the maximum number of neighbors used per prediction.
	// Typical range: 20-100.
	K int

	// MinK is the minimum number of neighbors for a neighborhood estimate.
	MinK int

	// MinSupport is the minimum number of co-played songs required
	// for a non-zero similarity.
	MinSupport int

	// TestFraction is the share of triplets held out for evaluation.
	// Zero disables the hold-out.
	TestFraction float64

	// MaxCandidates caps the number of unplayed songs scored per
	// recommendation. Zero scores every unplayed song.
	MaxCandidates int

	// DefaultTopN is used when Recommend is called with topN <= 0.
	DefaultTopN int

	// NumWorkers is the number of parallel similarity workers.
	NumWorkers int

	// Seed drives the train/test split.
	Seed int64

	// KeepPredictions retains held-out predictions on the model.
	KeepPredictions bool
}

// DefaultKNNConfig returns default k-NN configuration.
func DefaultKNNConfig() KNNConfig {
	return KNNConfig{
		K:               50,
		MinK:            1,
		MinSupport:      1,
		TestFraction:    0.25,
		MaxCandidates:   100,
		DefaultTopN:     5,
		NumWorkers:      4,
		Seed:            42,
		KeepPredictions: true,
	}
}

// UserKNN is a user-based k-nearest-neighbors estimator with mean centering.
//
// Similarity between users u and v is the cosine over co-played songs:
//
//	sim(u, v) = sum(r_ui * r_vi) / (sqrt(sum(r_ui^2)) * sqrt(sum(r_vi^2)))
//
// and the estimate for (u, i) uses the k users most similar to u that
// played i:
//
//	r̂_ui = mean_u + sum(sim(u, v) * (r_vi - mean_v)) / sum(sim(u, v))
//
// UserKNN itself is stateless; Train returns an immutable *KNNModel.
type UserKNN struct {
	config KNNConfig
}

// NewUserKNN creates a new user-based k-NN estimator.
func NewUserKNN(cfg KNNConfig) *UserKNN {
	if cfg.K <= 0 {
		cfg.K = 50
	}
	if cfg.MinK <= 0 {
		cfg.MinK = 1
	}
	if cfg.MinSupport <= 0 {
		cfg.MinSupport = 1
	}
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = 5
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}

	return &UserKNN{config: cfg}
}

// Name returns the estimator identifier.
func (k *UserKNN) Name() string {
	return "user_knn"
}

// Config returns the effective configuration.
func (k *UserKNN) Config() KNNConfig {
	return k.config
}

// Prepare projects the table into rating triplets. Duplicate (user, song)
// rows are summed.
func (k *UserKNN) Prepare(table *recommend.InteractionTable) (*TrainingSet, error) {
	if table == nil {
		return nil, recommend.Errorf(recommend.KindPrepare, "collaborative.prepare", "", "nil table")
	}

	type pair struct{ user, song string }
	index := make(map[pair]int, table.Len())
	users := make(map[string]struct{})
	songs := make(map[string]struct{})
	ratings := make([]Rating, 0, table.Len())

	var prepErr error
	table.Each(func(i int, r recommend.InteractionRow) bool {
		if r.UserID == "" || r.SongID == "" {
			prepErr = recommend.Errorf(recommend.KindPrepare, "collaborative.prepare", r.SongID, "row %d has an empty id", i)
			return false
		}
		if r.PlayCount == 0 {
			prepErr = recommend.Errorf(recommend.KindPrepare, "collaborative.prepare", r.SongID, "row %d has a zero play count", i)
			return false
		}

		key := pair{r.UserID, r.SongID}
		if idx, ok := index[key]; ok {
			ratings[idx].Value += float64(r.PlayCount)
			return true
		}
		index[key] = len(ratings)
		ratings = append(ratings, Rating{UserID: r.UserID, SongID: r.SongID, Value: float64(r.PlayCount)})
		users[r.UserID] = struct{}{}
		songs[r.SongID] = struct{}{}
		return true
	})
	if prepErr != nil {
		return nil, prepErr
	}

	return &TrainingSet{ratings: ratings, users: len(users), songs: len(songs)}, nil
}

// Train splits the training set, fits the neighborhood model on the train
// partition and evaluates it on the held-out partition.
func (k *UserKNN) Train(ctx context.Context, ts *TrainingSet) (*KNNModel, error) {
	const op = "collaborative.train"

	if ts == nil {
		return nil, recommend.Errorf(recommend.KindTrain, op, "", "nil training set")
	}
	if k.config.TestFraction < 0 || k.config.TestFraction >= 1 {
		return nil, recommend.Errorf(recommend.KindTrain, op, "", "test fraction must be in [0, 1), got %f", k.config.TestFraction)
	}

	train, test := trainTestSplit(ts.ratings, k.config.TestFraction, k.config.Seed)
	if len(train) == 0 {
		return nil, recommend.Errorf(recommend.KindTrain, op, "", "train partition is empty (%d triplets, test fraction %.2f)", ts.Len(), k.config.TestFraction)
	}

	m := newKNNModel(k.config, train)
	if len(m.users) < 2 {
		return nil, recommend.Errorf(recommend.KindTrain, op, "", "need at least 2 users for a neighborhood, got %d", len(m.users))
	}

	if err := m.computeSimilarities(ctx); err != nil {
		return nil, recommend.NewError(recommend.KindTrain, op, "", err)
	}

	m.evaluation = m.evaluate(test, k.config.KeepPredictions)
	m.trainSize = len(train)
	m.testSize = len(test)
	m.trainedAt = time.Now()
	return m, nil
}

// KNNModel is a trained user-based k-NN model. It is immutable and safe
// for concurrent use.
type KNNModel struct {
	config KNNConfig

	users     []string
	userIndex map[string]int
	songs     []string
	songIndex map[string]int

	// userRatings[u] and songRatings[i] are the train triplets by user and by song.
	userRatings [][]indexedRating
	songRatings [][]indexedRating

	means      []float64
	globalMean float64
	minRating  float64
	maxRating  float64

	// sims[u][v] is the similarity of users u and v; absent means zero.
	sims []map[int]float64

	evaluation recommend.Evaluation
	trainSize  int
	testSize   int
	trainedAt  time.Time
}

// indexedRating is a rating keyed by the other side's internal index.
type indexedRating struct {
	idx    int
	rating float64
}

func newKNNModel(cfg KNNConfig, train []Rating) *KNNModel {
	m := &KNNModel{
		config:    cfg,
		userIndex: make(map[string]int),
		songIndex: make(map[string]int),
		minRating: math.Inf(1),
		maxRating: math.Inf(-1),
	}

	var sum float64
	for _, r := range train {
		u, ok := m.userIndex[r.UserID]
		if !ok {
			u = len(m.users)
			m.userIndex[r.UserID] = u
			m.users = append(m.users, r.UserID)
			m.userRatings = append(m.userRatings, nil)
		}
		i, ok := m.songIndex[r.SongID]
		if !ok {
			i = len(m.songs)
			m.songIndex[r.SongID] = i
			m.songs = append(m.songs, r.SongID)
			m.songRatings = append(m.songRatings, nil)
		}
		m.userRatings[u] = append(m.userRatings[u], indexedRating{idx: i, rating: r.Value})
		m.songRatings[i] = append(m.songRatings[i], indexedRating{idx: u, rating: r.Value})

		sum += r.Value
		m.minRating = math.Min(m.minRating, r.Value)
		m.maxRating = math.Max(m.maxRating, r.Value)
	}
	m.globalMean = sum / float64(len(train))

	m.means = make([]float64, len(m.users))
	for u, ratings := range m.userRatings {
		var s float64
		for _, r := range ratings {
			s += r.rating
		}
		m.means[u] = s / float64(len(ratings))
	}
	return m
}

// computeSimilarities fills sims using the song inverted index. Each worker
// owns a contiguous range of users and writes only their rows.
func (m *KNNModel) computeSimilarities(ctx context.Context) error {
	n := len(m.users)
	m.sims = make([]map[int]float64, n)

	return parallelChunks(ctx, n, m.config.NumWorkers, func(ctx context.Context, start, end int) error {
		prods := make([]float64, n)
		sqU := make([]float64, n)
		sqV := make([]float64, n)
		support := make([]int, n)
		touched := make([]int, 0, 64)

		for u := start; u < end; u++ {
			if ContextCancelled(ctx) {
				return ctx.Err()
			}

			for _, ur := range m.userRatings[u] {
				for _, vr := range m.songRatings[ur.idx] {
					v := vr.idx
					if v == u {
						continue
					}
					if support[v] == 0 {
						touched = append(touched, v)
					}
					support[v]++
					prods[v] += ur.rating * vr.rating
					sqU[v] += ur.rating * ur.rating
					sqV[v] += vr.rating * vr.rating
				}
			}

			row := make(map[int]float64, len(touched))
			for _, v := range touched {
				if support[v] >= m.config.MinSupport {
					if den := math.Sqrt(sqU[v] * sqV[v]); den > 0 {
						row[v] = prods[v] / den
					}
				}
				prods[v], sqU[v], sqV[v], support[v] = 0, 0, 0, 0
			}
			touched = touched[:0]
			m.sims[u] = row
		}
		return nil
	})
}

// Predict estimates how strongly userID would engage with songID.
//
// When the user or the song was not seen in training the returned
// Prediction is still usable (global mean, WasImpossible set) and the error
// is of kind KindPrediction.
func (m *KNNModel) Predict(userID, songID string) (recommend.Prediction, error) {
	pred := recommend.Prediction{UserID: userID, SongID: songID}

	u, userKnown := m.userIndex[userID]
	i, songKnown := m.songIndex[songID]
	if !userKnown || !songKnown {
		pred.Estimate = m.clip(m.globalMean)
		pred.WasImpossible = true
		id := songID
		switch {
		case !userKnown && !songKnown:
			pred.Reason = "user and song are unknown"
			id = userID
		case !userKnown:
			pred.Reason = "user is unknown"
			id = userID
		default:
			pred.Reason = "song is unknown"
		}
		return pred, recommend.Errorf(recommend.KindPrediction, "collaborative.predict", id, "%s", pred.Reason)
	}

	pred.Estimate, pred.ActualK = m.estimate(u, i)
	return pred, nil
}

// estimate computes the mean-centered neighborhood estimate for known indices.
func (m *KNNModel) estimate(u, i int) (float64, int) {
	type candidate struct {
		v      int
		sim    float64
		rating float64
	}

	raters := m.songRatings[i]
	neighbors := make([]candidate, 0, len(raters))
	for _, r := range raters {
		if r.idx == u {
			continue
		}
		neighbors = append(neighbors, candidate{v: r.idx, sim: m.sims[u][r.idx], rating: r.rating})
	}

	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].sim != neighbors[b].sim {
			return neighbors[a].sim > neighbors[b].sim
		}
		return neighbors[a].v < neighbors[b].v
	})
	if len(neighbors) > m.config.K {
		neighbors = neighbors[:m.config.K]
	}

	var sumSim, sumRatings float64
	actualK := 0
	for _, nb := range neighbors {
		if nb.sim > 0 {
			sumSim += nb.sim
			sumRatings += nb.sim * (nb.rating - m.means[nb.v])
			actualK++
		}
	}

	est := m.means[u]
	if actualK >= m.config.MinK && sumSim > 0 {
		est += sumRatings / sumSim
	}
	return m.clip(est), actualK
}

// clip bounds an estimate to the observed rating range.
func (m *KNNModel) clip(est float64) float64 {
	return math.Max(m.minRating, math.Min(m.maxRating, est))
}

// Recommend scores songs in table that userID has not played and returns
// the topN best. Unknown users and songs receive baseline scores.
func (m *KNNModel) Recommend(ctx context.Context, userID string, table *recommend.InteractionTable, topN int) ([]recommend.ScoredSong, error) {
	const op = "collaborative.recommend"

	if table == nil {
		return nil, recommend.Errorf(recommend.KindPrepare, op, userID, "nil table")
	}
	topN = resolveTopN(topN, m.config.DefaultTopN)

	var candidates []string
	for _, songID := range table.SongIDs() {
		if table.HasPlayed(userID, songID) {
			continue
		}
		candidates = append(candidates, songID)
		if m.config.MaxCandidates > 0 && len(candidates) >= m.config.MaxCandidates {
			break
		}
	}

	scored := make([]recommend.ScoredSong, 0, len(candidates))
	for j, songID := range candidates {
		if j%256 == 0 && ContextCancelled(ctx) {
			return nil, recommend.NewError(recommend.KindPrediction, op, userID, ctx.Err())
		}
		pred, _ := m.Predict(userID, songID)
		scored = append(scored, recommend.ScoredSong{
			SongID:         songID,
			EstimatedScore: pred.Estimate,
			Fallback:       pred.WasImpossible || pred.ActualK < m.config.MinK,
		})
	}

	sortByScoreThenID(len(scored),
		func(i int) float64 { return scored[i].EstimatedScore },
		func(i int) string { return scored[i].SongID },
		func(i, j int) { scored[i], scored[j] = scored[j], scored[i] },
	)

	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored, nil
}

// Evaluation returns held-out accuracy computed at train time.
func (m *KNNModel) Evaluation() recommend.Evaluation {
	eval := m.evaluation
	if eval.Predictions != nil {
		eval.Predictions = append([]recommend.HeldOutPrediction(nil), eval.Predictions...)
	}
	return eval
}

// Neighbors returns up to n users most similar to userID, best first with
// ties broken by user_id. Only users sharing at least MinSupport songs with
// userID have a similarity and can appear. n <= 0 uses DefaultTopN.
func (m *KNNModel) Neighbors(userID string, n int) ([]recommend.SimilarUser, error) {
	u, ok := m.userIndex[userID]
	if !ok {
		return nil, recommend.Errorf(recommend.KindNotFound, "collaborative.neighbors", userID, "user is not in the train partition")
	}
	n = resolveTopN(n, m.config.DefaultTopN)

	row := m.sims[u]
	neighbors := make([]recommend.SimilarUser, 0, len(row))
	for v, sim := range row {
		if sim <= 0 {
			continue
		}
		neighbors = append(neighbors, recommend.SimilarUser{
			UserID:     m.users[v],
			Similarity: sim,
			MeanRating: m.means[v],
		})
	}

	sortByScoreThenID(len(neighbors),
		func(i int) float64 { return neighbors[i].Similarity },
		func(i int) string { return neighbors[i].UserID },
		func(i, j int) { neighbors[i], neighbors[j] = neighbors[j], neighbors[i] },
	)

	if len(neighbors) > n {
		neighbors = neighbors[:n]
	}
	return neighbors, nil
}

// GlobalMean returns the mean rating of the train partition.
func (m *KNNModel) GlobalMean() float64 {
	return m.globalMean
}

// Users returns the number of users in the train partition.
func (m *KNNModel) Users() int {
	return len(m.users)
}

// Songs returns the number of songs in the train partition.
func (m *KNNModel) Songs() int {
	return len(m.songs)
}

// TrainSize returns the number of train triplets.
func (m *KNNModel) TrainSize() int {
	return m.trainSize
}

// TestSize returns the number of held-out triplets.
func (m *KNNModel) TestSize() int {
	return m.testSize
}

// TrainedAt returns when the model was trained.
func (m *KNNModel) TrainedAt() time.Time {
	return m.trainedAt
}
