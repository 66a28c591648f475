package loader

import (
	"errors"
	"math"
	"math/rand"

	"mlprep/pkg/data"
)

// TrainTestSplit shuffles 0..n-1 with a seeded source and splits the indices by ratio.
// The test share is rounded up, so any non-empty dataset with testRatio > 0 gets at least one test row.
func TrainTestSplit(n int, testRatio float64, seed int64) (train, test []int, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, errors.New("split: test ratio must be in (0, 1)")
	}
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(float64(n) * testRatio))
	return indices[nTest:], indices[:nTest], nil
}

// SplitFrame splits a frame into train and test frames.
func SplitFrame(f *data.Frame, testRatio float64, seed int64) (train, test *data.Frame, err error) {
	if f.Len() < 2 {
		return nil, nil, errors.New("split: need at least two rows")
	}
	trainIdx, testIdx, err := TrainTestSplit(f.Len(), testRatio, seed)
	if err != nil {
		return nil, nil, err
	}
	if len(trainIdx) == 0 {
		return nil, nil, errors.New("split: no rows left for training")
	}
	if train, err = f.Rows(trainIdx); err != nil {
		return nil, nil, err
	}
	if test, err = f.Rows(testIdx); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
