package firehose

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		kind OperationKind
	}{
		{"app.bsky.feed.post/3jzfcijpj2z2a", OperationPost},
		{"app.bsky.feed.like/3jzfcijpj2z2a", OperationLike},
		{"app.bsky.graph.follow/3jzfcijpj2z2a", OperationFollow},
		{"app.bsky.graph.block/3jzfcijpj2z2a", OperationBlock},
		{"app.bsky.feed.repost/3jzfcijpj2z2a", OperationRepost},
		{"app.bsky.graph.listitem/3jzfcijpj2z2a", OperationListItem},
		{"app.bsky.actor.profile/self", OperationProfile},
		{"app.bsky.feed.threadgate/3jzfcijpj2z2a", OperationOther},
	}

	for _, tc := range cases {
		op := Classify(RawOp{Path: tc.path, Action: "create"})
		if op.Kind != tc.kind {
			t.Errorf("Classify(%q).Kind = %v, want %v", tc.path, op.Kind, tc.kind)
		}
		if op.Raw.Path != tc.path {
			t.Errorf("Classify(%q).Raw.Path = %q, want unchanged", tc.path, op.Raw.Path)
		}
	}
}

func TestClassify_OtherCarriesCollectionForDiagnostics(t *testing.T) {
	op := Classify(RawOp{Path: "app.bsky.feed.threadgate/abc", Action: "create"})
	if op.Collection != "app.bsky.feed.threadgate" {
		t.Errorf("Collection = %q, want app.bsky.feed.threadgate", op.Collection)
	}
}

func TestClassify_PathWithoutSlash(t *testing.T) {
	op := Classify(RawOp{Path: "app.bsky.actor.profile", Action: "create"})
	if op.Kind != OperationProfile {
		t.Errorf("Classify with no rkey segment = %v, want OperationProfile", op.Kind)
	}
}
