package brawlapi

import (
	"clubbot/internal/club"
	"clubbot/internal/common"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestApi(handler http.HandlerFunc) (*Api, func()) {
	server := httptest.NewServer(handler)
	api := NewApi(Config{OfficialURL: server.URL, BrawlapiURL: server.URL, Key: "secret", ClubTag: "#2R288L2YV"}, server.Client(), common.SystemClock{}, zerolog.Nop())
	return api, server.Close
}

func TestFetchRoster(t *testing.T) {
	Convey("Given the official API answers with the member list", t, func() {
		var path, auth string
		api, closeServer := newTestApi(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.EscapedPath()
			auth = r.Header.Get("Authorization")
			w.Write([]byte(`{"items":[
				{"tag":"#PY","name":"Ann","role":"president","trophies":30000},
				{"tag":"#QG","name":"Bob","role":"member","trophies":12000}
			],"paging":{"cursors":{}}}`))
		})
		defer closeServer()

		roster, err := api.FetchRoster(context.Background())

		Convey("Then the entries keep the club order and their roles are mapped", func() {
			So(err, ShouldBeNil)
			So(roster, ShouldResemble, []club.RosterEntry{
				{Tag: "PY", Name: "Ann", Role: club.RolePresident, Trophies: 30000},
				{Tag: "QG", Name: "Bob", Role: club.RoleMember, Trophies: 12000},
			})
		})

		Convey("Then the tag is escaped and the key is sent", func() {
			So(path, ShouldEqual, "/v1/clubs/%232R288L2YV/members")
			So(auth, ShouldEqual, "Bearer secret")
		})
	})

	Convey("Given the club has no members", t, func() {
		api, closeServer := newTestApi(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[]}`))
		})
		defer closeServer()

		roster, err := api.FetchRoster(context.Background())

		Convey("Then an empty roster is valid data", func() {
			So(err, ShouldBeNil)
			So(roster, ShouldBeEmpty)
		})
	})

	Convey("Given the API answers with something that is not a member list", t, func() {
		api, closeServer := newTestApi(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>maintenance</html>`))
		})
		defer closeServer()

		_, err := api.FetchRoster(context.Background())

		Convey("Then an upstream error is returned", func() {
			var upstream *common.UpstreamAPIError
			So(errors.As(err, &upstream), ShouldBeTrue)
		})
	})

	Convey("Given the API fails", t, func() {
		api, closeServer := newTestApi(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		defer closeServer()

		_, err := api.FetchRoster(context.Background())

		Convey("Then the status is part of the upstream error", func() {
			var upstream *common.UpstreamAPIError
			So(errors.As(err, &upstream), ShouldBeTrue)
			So(upstream.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestFetchMatchLog(t *testing.T) {
	Convey("Given a battle log", t, func() {
		var path string
		api, closeServer := newTestApi(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.EscapedPath()
			w.Write([]byte(`{"items":[{"battleTime":"20240310T120000.000Z","event":{"mode":"gemGrab"}},{"battleTime":"20240309T081530.000Z"}]}`))
		})
		defer closeServer()

		matches, err := api.FetchMatchLog(context.Background(), "PY")

		Convey("Then the battle times are parsed as UTC instants", func() {
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/v1/players/%23PY/battlelog")
			So(matches, ShouldResemble, []club.MatchEntry{
				{Timestamp: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
				{Timestamp: time.Date(2024, 3, 9, 8, 15, 30, 0, time.UTC)},
			})
		})
	})

	Convey("Given a battle log with a broken time", t, func() {
		api, closeServer := newTestApi(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[{"battleTime":"yesterday"}]}`))
		})
		defer closeServer()

		_, err := api.FetchMatchLog(context.Background(), "PY")

		Convey("Then the log is rejected as malformed", func() {
			var upstream *common.UpstreamAPIError
			So(errors.As(err, &upstream), ShouldBeTrue)
		})
	})
}

func TestFetchClubLog(t *testing.T) {
	Convey("Given BrawlAPI answers with the club log", t, func() {
		var path string
		api, closeServer := newTestApi(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			w.Write([]byte(`{"club":{"tag":"2R288L2YV","name":"Club","description":"Hi","trophies":600000,"requiredTrophies":20000,"memberCount":28,"type":"open"},
			"history":[
				{"type":"settings","timestamp":20,"data":{"type":"requirement","old":18000,"new":20000}},
				{"type":"members","timestamp":10,"data":{"player":{"tag":"PY","name":"Ann"},"joined":true}}
			]}`))
		})
		defer closeServer()

		log, err := api.FetchClubLog(context.Background())

		Convey("Then the club and its history are decoded", func() {
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/v1/clublog/2R288L2YV")
			So(log.Club.MemberCount, ShouldEqual, 28)
			So(log.Club.RequiredTrophies, ShouldEqual, 20000)
			So(log.History, ShouldHaveLength, 2)
			So(log.History[0].Data.Old, ShouldEqual, LogValue("18000"))
			So(log.History[1].Data.Player.Name, ShouldEqual, "Ann")
			So(log.History[1].Data.Joined, ShouldBeTrue)
		})
	})
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		invalid bool
	}{
		{input: "#2R288L2YV", want: "2R288L2YV"},
		{input: " py9qg ", want: "PY9QG"},
		{input: "#2ROO", want: "2R00"},
		{input: "#P", invalid: true},
		{input: "#HELLO", invalid: true},
		{input: "#2R288L2YV2R288", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTag(tt.input)
			if tt.invalid {
				var validation *common.ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("ParseTag(%q) error = %v, want a validation error", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseTag(%q) = %q, %v, want %q", tt.input, got, err, tt.want)
			}
		})
	}
}
