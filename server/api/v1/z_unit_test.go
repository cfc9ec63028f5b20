package v1_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab"
	"github.com/zintix-labs/tumblab/configs"
	"github.com/zintix-labs/tumblab/dto"
	"github.com/zintix-labs/tumblab/sdk/core"
	"github.com/zintix-labs/tumblab/server/api"
	v1 "github.com/zintix-labs/tumblab/server/api/v1"
	"github.com/zintix-labs/tumblab/server/logger"
	"github.com/zintix-labs/tumblab/server/netsvr"
	"github.com/zintix-labs/tumblab/server/svrcfg"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newTestServer(t *testing.T, dev bool) *httptest.Server {
	t.Helper()
	lab, err := tumblab.NewAuto(core.Default(), tumblab.Configs(configs.FS))
	if err != nil {
		t.Fatalf("lab: %v", err)
	}
	cfg := &svrcfg.SvrCfg{
		Log:     logger.NewDefaultLogger(logger.ModeSilence),
		Tumblab: lab,
		Dev:     dev,
	}
	if err := cfg.Valid(); err != nil {
		t.Fatalf("cfg: %v", err)
	}
	rt, err := lab.BuildRuntime(2)
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	svr := netsvr.NewChiServer(":0")
	if err := api.RegisterRoutes(svr, cfg, rt); err != nil {
		t.Fatalf("routes: %v", err)
	}
	ts := httptest.NewServer(svr.Handler())
	t.Cleanup(func() {
		ts.Close()
		rt.Close()
	})
	return ts
}

func do(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, url, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if out != nil && resp.StatusCode < 300 && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s: %v (%s)", url, err, raw)
		}
	}
	return resp.StatusCode
}

func TestGamesAndMetrics(t *testing.T) {
	ts := newTestServer(t, false)
	var games []map[string]any
	if code := do(t, http.MethodGet, ts.URL+"/v1/games", "", &games); code != http.StatusOK || len(games) != 1 {
		t.Fatalf("games: %d %v", code, games)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/games/1001", "", nil); code != http.StatusOK {
		t.Fatalf("game: %d", code)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/games/9", "", nil); code != http.StatusNotFound {
		t.Fatalf("missing game: %d", code)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/games/abc", "", nil); code != http.StatusBadRequest {
		t.Fatalf("bad gid: %d", code)
	}
	var mt []tumblab.MachinePoolMetrics
	if code := do(t, http.MethodGet, ts.URL+"/v1/metrics", "", &mt); code != http.StatusOK || len(mt) != 1 || mt[0].PoolSize != 2 {
		t.Fatalf("metrics: %d %+v", code, mt)
	}
}

func TestSpinEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	var res dto.SpinResult
	if code := do(t, http.MethodGet, ts.URL+"/v1/spin?gid=1001&bet_mult=2", "", &res); code != http.StatusOK {
		t.Fatalf("spin: %d", code)
	}
	if res.BetMult != 2 || !res.IsGameEnd || res.State.StartCoreSnapB64U == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	var replay dto.SpinResult
	body := `{"gid":1001,"bet_mult":2,"start_state":{"start_b64u":"` + res.State.StartCoreSnapB64U + `"}}`
	if code := do(t, http.MethodPost, ts.URL+"/v1/spin", body, &replay); code != http.StatusOK {
		t.Fatalf("replay: %d", code)
	}
	if !replay.TotalWin.Equal(res.TotalWin) || replay.State.AfterCoreSnapB64U != res.State.AfterCoreSnapB64U {
		t.Fatalf("replay differs")
	}
	for _, c := range []struct{ method, path, body string }{
		{http.MethodGet, "/v1/spin?gid=1001&bet_mult=999", ""},
		{http.MethodGet, "/v1/spin?gid=x", ""},
		{http.MethodPost, "/v1/spin", `{"gid":1001,"bet_mode":1}`},
	} {
		if code := do(t, c.method, ts.URL+c.path, c.body, nil); code != http.StatusBadRequest {
			t.Fatalf("%s %s: %d", c.method, c.path, code)
		}
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/spin?gid=9", "", nil); code != http.StatusNotFound {
		t.Fatalf("unknown game: %d", code)
	}
}

func TestSessionEndpoints(t *testing.T) {
	ts := newTestServer(t, false)
	var s tumblab.SessionView
	if code := do(t, http.MethodPost, ts.URL+"/v1/session", `{"gid":1001,"balance":"0.10"}`, &s); code != http.StatusCreated || s.ID == "" {
		t.Fatalf("open: %d %+v", code, s)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/spin?gid=1001&session="+s.ID, "", nil); code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", code)
	}
	var got tumblab.SessionView
	if code := do(t, http.MethodGet, ts.URL+"/v1/session/"+s.ID, "", &got); code != http.StatusOK || !got.Balance.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("get: %d %+v", code, got)
	}
	if code := do(t, http.MethodDelete, ts.URL+"/v1/session/"+s.ID, "", nil); code != http.StatusNoContent {
		t.Fatalf("close: %d", code)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/session/"+s.ID, "", nil); code != http.StatusNotFound {
		t.Fatalf("closed session: %d", code)
	}
}

func TestSimEndpoints(t *testing.T) {
	ts := newTestServer(t, false)
	var resp v1.SimResponse
	if code := do(t, http.MethodGet, ts.URL+"/v1/sim?gid=1001&rounds=200&workers=2&seed=9", "", &resp); code != http.StatusOK {
		t.Fatalf("sim: %d", code)
	}
	if resp.Stats == nil || resp.Stats.Summary.Rounds != 400 || resp.Seed != 9 {
		t.Fatalf("unexpected sim response %+v", resp)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/sim?gid=1001&rounds=10&workers=99", "", nil); code != http.StatusBadRequest {
		t.Fatalf("too many workers: %d", code)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/sim?gid=9&rounds=10", "", nil); code != http.StatusNotFound {
		t.Fatalf("unknown game: %d", code)
	}

	resp2, err := http.Get(ts.URL + "/v1/sim?gid=1001&rounds=50&seed=1&format=yaml")
	if err != nil {
		t.Fatalf("yaml sim: %v", err)
	}
	raw, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()
	if resp2.Header.Get("Content-Type") != "application/yaml" || !strings.Contains(string(raw), "summary:") {
		t.Fatalf("unexpected yaml report %q", raw)
	}

	cfg, _ := configs.FS.ReadFile("tumble.yaml")
	body, _ := json.Marshal(map[string]any{"cfg": string(cfg), "rounds": 100, "seed": 3})
	var byCfg v1.SimResponse
	if code := do(t, http.MethodPost, ts.URL+"/v1/simbycfg", string(body), &byCfg); code != http.StatusOK || byCfg.Stats.Summary.Rounds != 100 {
		t.Fatalf("simbycfg: %d", code)
	}
}

func TestStreamRounds(t *testing.T) {
	ts := newTestServer(t, false)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/stream?gid=1001&bet_mult=1"
	for range 20 {
		c, _, err := websocket.Dial(ctx, base, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		rounds := 0
		var result *dto.SpinResult
		for result == nil {
			var f v1.StreamFrame
			if err := wsjson.Read(ctx, c, &f); err != nil {
				t.Fatalf("read: %v", err)
			}
			switch f.Type {
			case "round":
				if f.Round == nil || f.Round.Index != rounds {
					t.Fatalf("unexpected round frame %+v", f)
				}
				rounds++
			case "result":
				result = f.Result
			default:
				t.Fatalf("unexpected frame %+v", f)
			}
		}
		if rounds != len(result.Rounds) {
			t.Fatalf("streamed %d rounds, result has %d", rounds, len(result.Rounds))
		}
		var f v1.StreamFrame
		if err := wsjson.Read(ctx, c, &f); websocket.CloseStatus(err) != websocket.StatusNormalClosure {
			t.Fatalf("expected normal closure, got %v", err)
		}
		c.CloseNow()
	}

	// 請求錯誤在升級前回應
	resp, err := http.Get(ts.URL + "/v1/stream?gid=bad")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDevRoutes(t *testing.T) {
	ts := newTestServer(t, true)
	var r1, r2 tumblab.DevSpinReport
	if code := do(t, http.MethodPost, ts.URL+"/dev/spin", `{"gid":1001,"rounds":3,"seed":"7"}`, &r1); code != http.StatusOK || r1.Round != 3 {
		t.Fatalf("dev spin: %d %+v", code, r1)
	}
	body := `{"game":"tumble","rounds":3,"snap":"` + r1.Before + `"}`
	if code := do(t, http.MethodPost, ts.URL+"/dev/spin", body, &r2); code != http.StatusOK {
		t.Fatalf("dev restore: %d", code)
	}
	if !r2.TotalWin.Equal(r1.TotalWin) || r2.After != r1.After {
		t.Fatalf("restore must reproduce")
	}
	var sim tumblab.DevSimReport
	if code := do(t, http.MethodPost, ts.URL+"/dev/sim", `{"gid":1001,"rounds":100,"seed":"1"}`, &sim); code != http.StatusOK || sim.Stat == nil {
		t.Fatalf("dev sim: %d", code)
	}
	if code := do(t, http.MethodPost, ts.URL+"/dev/spin", `{"game":"nope","rounds":1}`, nil); code != http.StatusNotFound {
		t.Fatalf("unknown game: %d", code)
	}
	if code := do(t, http.MethodGet, ts.URL+"/dev/meta", "", nil); code != http.StatusOK {
		t.Fatalf("meta: %d", code)
	}
}

func TestDevRoutesDisabled(t *testing.T) {
	ts := newTestServer(t, false)
	if code := do(t, http.MethodGet, ts.URL+"/dev/meta", "", nil); code != http.StatusNotFound {
		t.Fatalf("dev routes must be off, got %d", code)
	}
}
