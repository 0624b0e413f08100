package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// In-memory fakes shared by the pipeline tests. Writes are mutex-guarded
// because generation stages insert from parallel goroutines.

type fakeStore struct {
	mu           sync.Mutex
	translations map[string]string // sectionID|language|level -> content
	segments     map[string][]AudioSegment
	frames       map[string][]SceneFrame
	videos       []VideoAsset
	files        []FileAsset
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		translations: make(map[string]string),
		segments:     make(map[string][]AudioSegment),
		frames:       make(map[string][]SceneFrame),
	}
}

func tkey(sectionID, languageID, cefrLevel string) string {
	return sectionID + "|" + languageID + "|" + cefrLevel
}

func (s *fakeStore) GetTranslation(_ context.Context, sectionID, languageID, cefrLevel string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.translations[tkey(sectionID, languageID, cefrLevel)]
	if !ok {
		return "", ErrTranslationNotFound
	}
	return content, nil
}

func (s *fakeStore) HasAudioSegment(_ context.Context, sectionID, languageID, cefrLevel string, position int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seg := range s.segments[tkey(sectionID, languageID, cefrLevel)] {
		if seg.Position == position {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateAudioSegment(_ context.Context, sectionID, languageID, cefrLevel string, seg AudioSegment, asset FileAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tkey(sectionID, languageID, cefrLevel)
	s.segments[key] = append(s.segments[key], seg)
	s.files = append(s.files, asset)
	return nil
}

func (s *fakeStore) ListAudioSegments(_ context.Context, sectionID, languageID, cefrLevel string) ([]AudioSegment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	segs := append([]AudioSegment(nil), s.segments[tkey(sectionID, languageID, cefrLevel)]...)
	sort.Slice(segs, func(i, j int) bool { return segs[i].Position < segs[j].Position })
	return segs, nil
}

func (s *fakeStore) HasSceneFrame(_ context.Context, sectionID string, position int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.frames[sectionID] {
		if f.Position == position {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateSceneFrame(_ context.Context, sectionID string, frame SceneFrame, asset FileAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[sectionID] = append(s.frames[sectionID], frame)
	s.files = append(s.files, asset)
	return nil
}

func (s *fakeStore) ListSceneFrames(_ context.Context, sectionID string) ([]SceneFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := append([]SceneFrame(nil), s.frames[sectionID]...)
	sort.Slice(frames, func(i, j int) bool { return frames[i].Position < frames[j].Position })
	return frames, nil
}

func (s *fakeStore) CreateSectionVideo(_ context.Context, video VideoAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos = append(s.videos, video)
	return nil
}

type fakeObjects struct {
	mu      sync.Mutex
	nextID  int
	objects map[string][]byte
	failRef string // Download of this ref silently writes nothing
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (o *fakeObjects) Put(_ context.Context, data []byte, name, _ string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	ref := fmt.Sprintf("file-%d-%s", o.nextID, name)
	o.objects[ref] = append([]byte(nil), data...)
	return ref, nil
}

func (o *fakeObjects) Download(_ context.Context, fileRef, localPath string) error {
	o.mu.Lock()
	data, ok := o.objects[fileRef]
	skip := o.failRef != "" && fileRef == o.failRef
	o.mu.Unlock()
	if skip {
		return nil
	}
	if !ok {
		data = []byte("payload:" + fileRef)
	}
	return os.WriteFile(localPath, data, 0o644)
}

func (o *fakeObjects) PresignedURL(_ context.Context, fileRef string, _ time.Duration) (string, error) {
	return "https://storage.example/" + fileRef, nil
}

type ttsCall struct {
	text, previous, next string
}

type fakeTTS struct {
	mu    sync.Mutex
	calls []ttsCall
	err   error
}

func (f *fakeTTS) Synthesize(_ context.Context, text, previousText, nextText string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ttsCall{text: text, previous: previousText, next: nextText})
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

func (f *fakeTTS) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.text
	}
	return out
}

type fakeLLM struct {
	mu       sync.Mutex
	prompts  []string
	response func(userPrompt string) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, _, userPrompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, userPrompt)
	f.mu.Unlock()
	return f.response(userPrompt)
}

type fakeImages struct {
	mu       sync.Mutex
	submits  []string
	statuses map[string][]ImageJob // jobID -> successive poll observations
	polls    map[string]int
}

func newFakeImages() *fakeImages {
	return &fakeImages{
		statuses: make(map[string][]ImageJob),
		polls:    make(map[string]int),
	}
}

func (f *fakeImages) Submit(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, prompt)
	jobID := fmt.Sprintf("job-%d", len(f.submits))
	if _, ok := f.statuses[jobID]; !ok {
		f.statuses[jobID] = []ImageJob{{State: JobSucceeded, ResultData: []byte("img:" + prompt)}}
	}
	return jobID, nil
}

func (f *fakeImages) Poll(_ context.Context, jobID string) (ImageJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seq := f.statuses[jobID]
	idx := f.polls[jobID]
	f.polls[jobID]++
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	return seq[idx], nil
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	return []byte("fetched:" + url), nil
}

type fakeProber struct {
	durations []int // returned in call order
	mu        sync.Mutex
	calls     int
}

func (f *fakeProber) DurationMs(_ context.Context, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := 1000
	if f.calls < len(f.durations) {
		d = f.durations[f.calls]
	}
	f.calls++
	return d, nil
}

type fakeRunner struct {
	mu       sync.Mutex
	commands [][]string
	failOn   string // substring of an arg that triggers failure
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.commands = append(f.commands, append([]string{name}, args...))
	f.mu.Unlock()
	outPath := args[len(args)-1]
	for _, arg := range args {
		if f.failOn != "" && filepath.Base(arg) == f.failOn {
			return &SubprocessError{Cmd: name, Stderr: "simulated failure", Err: os.ErrInvalid}
		}
	}
	return os.WriteFile(outPath, []byte("out"), 0o644)
}

type fakeHost struct {
	mu      sync.Mutex
	created []string
}

func (f *fakeHost) CreateAsset(_ context.Context, sourceURL, _ string) (HostAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, sourceURL)
	return HostAsset{AssetID: "asset-1", PlaybackID: "playback-1"}, nil
}

// testEnv bundles a Pipeline with every fake it was built from so tests can
// seed inputs and inspect recorded calls.
type testEnv struct {
	pipeline *Pipeline
	store    *fakeStore
	objects  *fakeObjects
	tts      *fakeTTS
	llm      *fakeLLM
	images   *fakeImages
	host     *fakeHost
	runner   *fakeRunner
	prober   *fakeProber
}

func newTestEnv(scratch string) *testEnv {
	env := &testEnv{
		store:   newFakeStore(),
		objects: newFakeObjects(),
		tts:     &fakeTTS{},
		llm:     &fakeLLM{response: func(string) (string, error) { return `{"description":"a scene"}`, nil }},
		images:  newFakeImages(),
		host:    &fakeHost{},
		runner:  &fakeRunner{},
		prober:  &fakeProber{},
	}
	env.pipeline = New(Deps{
		Store:   env.store,
		Objects: env.objects,
		TTS:     env.tts,
		LLM:     env.llm,
		Images:  env.images,
		Host:    env.host,
		Runner:  env.runner,
		Prober:  env.prober,
		Fetcher: fakeFetcher{},
		Gate:    NewGate(2),
	}, Options{
		PollInterval:    time.Millisecond,
		PollMaxAttempts: 5,
		ScratchDir:      scratch,
	})
	return env
}
