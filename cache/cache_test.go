package cache

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestLoadBuildsOnce(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	calls := 0
	loader := func(key string) (any, error) {
		calls++
		return key + "-built", nil
	}
	obj, err := Load("alpha", loader)
	is.NoErr(err)
	is.Equal(obj.(string), "alpha-built")
	obj, err = Load("alpha", loader)
	is.NoErr(err)
	is.Equal(obj.(string), "alpha-built")
	is.Equal(calls, 1)
	is.Equal(GlobalObjectCache.len(), 1)
}

func TestFailedLoadIsNotCached(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	boom := errors.New("boom")
	_, err := Load("beta", func(string) (any, error) { return nil, boom })
	is.True(errors.Is(err, boom))
	obj, err := Load("beta", func(string) (any, error) { return 42, nil })
	is.NoErr(err)
	is.Equal(obj.(int), 42)
}
