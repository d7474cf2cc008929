package registry

import "github.com/tidwall/gjson"

// Tag is one key/value pair attached to a model version.
type Tag struct {
	Key   string
	Value string
}

// ModelVersion is the normalized form of an upstream version record. Registry
// bookkeeping (run id, run link, status, stage, last update) is not carried.
type ModelVersion struct {
	Name              string
	Version           string
	CreationTimestamp int64
	Tags              []Tag
	Description       string
	Source            string
}

// SearchPage is one page of search results. NextPageToken is empty on the last page.
type SearchPage struct {
	Records       []ModelVersion
	NextPageToken string
}

// HasMore reports whether the upstream indicated another page.
func (p SearchPage) HasMore() bool { return p.NextPageToken != "" }

func normalize(v gjson.Result) ModelVersion {
	mv := ModelVersion{
		Name:              v.Get("name").String(),
		Version:           v.Get("version").String(),
		CreationTimestamp: v.Get("creation_timestamp").Int(),
		Description:       v.Get("description").String(),
		Source:            v.Get("source").String(),
	}
	v.Get("tags").ForEach(func(_, t gjson.Result) bool {
		mv.Tags = append(mv.Tags, Tag{Key: t.Get("key").String(), Value: t.Get("value").String()})
		return true
	})
	return mv
}

func normalizeAll(list gjson.Result) []ModelVersion {
	var out []ModelVersion
	list.ForEach(func(_, v gjson.Result) bool {
		out = append(out, normalize(v))
		return true
	})
	return out
}
