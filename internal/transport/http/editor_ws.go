package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"coursedeck-service/internal/app"
	"coursedeck-service/internal/domain"
	"coursedeck-service/internal/editor"
)

// EditorSessionStore hands out one live editing session per course.
type EditorSessionStore interface {
	GetOrCreate(course domain.Course) *editor.Session
	Get(courseID string) (*editor.Session, bool)
	Delete(courseID string)
}

// EditorWSHandler drives a course editing session over a websocket. Each
// connection mutates the session through typed operations and receives the
// full course snapshot back after every change.
type EditorWSHandler struct {
	courses  *app.CourseService
	sessions EditorSessionStore
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewEditorWSHandler(courses *app.CourseService, sessions EditorSessionStore, log *zap.Logger) *EditorWSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &EditorWSHandler{
		courses:  courses,
		sessions: sessions,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundOp struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type snapshotPayload struct {
	Course        domain.Course `json:"course"`
	ActiveLesson  int           `json:"activeLesson"`
	ActiveSlide   int           `json:"activeSlide"`
	ActiveElement int           `json:"activeElement"`
	CanUndo       bool          `json:"canUndo"`
	CanRedo       bool          `json:"canRedo"`
}

type indexPayload struct {
	Index int `json:"index"`
}

type titlePayload struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Commit bool   `json:"commit"`
}

type reorderPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type contentPayload struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
	Commit  bool   `json:"commit"`
}

type movePayload struct {
	Index    int             `json:"index"`
	Position domain.Position `json:"position"`
}

type resizePayload struct {
	Index    int             `json:"index"`
	Size     domain.Size     `json:"size"`
	Position domain.Position `json:"position"`
}

type rotatePayload struct {
	Index   int     `json:"index"`
	Degrees float64 `json:"degrees"`
}

type guidesPayload struct {
	Index        int     `json:"index"`
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
	Scale        float64 `json:"scale"`
}

type answerTextPayload struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Commit bool   `json:"commit"`
}

type matchPairPayload struct {
	Index        int    `json:"index"`
	Label        string `json:"label"`
	CorrectMatch string `json:"correctMatch"`
	Commit       bool   `json:"commit"`
}

type textPayload struct {
	Text   string `json:"text"`
	Commit bool   `json:"commit"`
}

// ServeWS upgrades the request and runs the editing loop until the client
// disconnects.
func (h *EditorWSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("courseId")
	if courseID == "" {
		http.Error(w, "missing courseId", http.StatusBadRequest)
		return
	}

	course, err := h.courses.GetCourse(r.Context(), courseID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session := h.sessions.GetOrCreate(course)

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", zap.Error(err))
				return
			}
		}
	}()

	send <- snapshotMessage(session)

	for {
		var inbound inboundOp
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, session, courseID, inbound, send)
	}

	close(send)
	<-writerDone
}

func (h *EditorWSHandler) dispatch(r *http.Request, session *editor.Session, courseID string, inbound inboundOp, send chan<- outboundMessage[any]) {
	fail := func(msg string) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}
	snapshot := func() {
		send <- snapshotMessage(session)
	}
	// finish reports a failed operation back to the client; a successful one
	// broadcasts the updated snapshot.
	finish := func(err error) {
		if err != nil {
			fail(err.Error())
			return
		}
		snapshot()
	}

	switch inbound.Type {
	case "undo":
		session.Undo()
		snapshot()
	case "redo":
		session.Redo()
		snapshot()
	case "save":
		course := session.CourseForSave()
		if _, err := h.courses.UpdateCourse(r.Context(), course); err != nil {
			fail(err.Error())
			return
		}
		send <- outboundMessage[any]{Type: "saved", Payload: struct {
			CourseID string `json:"courseId"`
		}{CourseID: courseID}}
	case "close":
		h.sessions.Delete(courseID)
		send <- outboundMessage[any]{Type: "closed", Payload: struct{}{}}

	case "selectLesson", "selectSlide", "selectElement":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		switch inbound.Type {
		case "selectLesson":
			session.SelectLesson(p.Index)
		case "selectSlide":
			session.SelectSlide(p.Index)
		case "selectElement":
			session.SelectElement(p.Index)
		}
		snapshot()

	case "addLesson":
		finish(session.AddLesson())
	case "addFinalExam":
		finish(session.AddFinalExamLesson())
	case "deleteLesson":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.DeleteLesson(p.Index))
	case "setLessonTitle":
		var p titlePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetLessonTitle(p.Index, p.Title, p.Commit))
	case "reorderLessons":
		var p reorderPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.ReorderLessons(p.From, p.To))

	case "addSlide":
		finish(session.AddSlide())
	case "deleteSlide":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.DeleteSlide(p.Index))
	case "setSlideTitle":
		var p titlePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetSlideTitle(p.Index, p.Title, p.Commit))
	case "setSlideBackground":
		var p struct {
			Color string `json:"color"`
		}
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetSlideBackground(p.Color))
	case "reorderSlides":
		var p reorderPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.ReorderSlides(p.From, p.To))

	case "setMetadata":
		var p editor.MetadataPatch
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetMetadata(p, true))
	case "addTag":
		var p struct {
			Tag string `json:"tag"`
		}
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.AddTag(p.Tag))
	case "removeTag":
		var p struct {
			Tag string `json:"tag"`
		}
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.RemoveTag(p.Tag))

	case "addElement":
		var p struct {
			Kind domain.ElementKind `json:"kind"`
		}
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.AddElement(p.Kind))
	case "moveElement":
		var p movePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.MoveElement(p.Index, p.Position))
	case "resizeElement":
		var p resizePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.ResizeElement(p.Index, p.Size, p.Position))
	case "rotateElement":
		var p rotatePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.RotateElement(p.Index, p.Degrees))
	case "deleteElement":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.DeleteElement(p.Index))
	case "toggleElementVisibility":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.ToggleElementVisibility(p.Index))
	case "setElementContent":
		var p contentPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetElementContent(p.Index, p.Content, p.Commit))
	case "setTextStyle":
		var p struct {
			Index int                   `json:"index"`
			Style editor.TextStylePatch `json:"style"`
		}
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetTextStyle(p.Index, p.Style))

	case "dragGuides":
		var p guidesPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		guides := session.SnapGuidesFor(p.Index, p.CanvasWidth, p.CanvasHeight, p.Scale)
		send <- outboundMessage[any]{Type: "guides", Payload: guides}
	case "layers":
		send <- outboundMessage[any]{Type: "layers", Payload: session.Layers()}

	case "toggleQuiz":
		finish(session.ToggleQuiz())
	case "setQuizKind":
		var p struct {
			Kind domain.QuizKind `json:"kind"`
		}
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetQuizKind(p.Kind))
	case "setQuizQuestion":
		var p textPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetQuizQuestion(p.Text, p.Commit))
	case "setQuizExplanation":
		var p textPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetQuizExplanation(p.Text, p.Commit))
	case "addAnswer":
		finish(session.AddAnswer())
	case "removeAnswer":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.RemoveAnswer(p.Index))
	case "setAnswerText":
		var p answerTextPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetAnswerText(p.Index, p.Text, p.Commit))
	case "setAnswerCorrect":
		var p struct {
			Index   int  `json:"index"`
			Correct bool `json:"correct"`
		}
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetAnswerCorrect(p.Index, p.Correct))
	case "addMatchPrompt":
		finish(session.AddMatchPrompt())
	case "removeMatchPrompt":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.RemoveMatchPrompt(p.Index))
	case "setMatchPrompt":
		var p matchPairPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetMatchPrompt(p.Index, p.Label, p.CorrectMatch, p.Commit))
	case "addMatchOption":
		var p struct {
			Option string `json:"option"`
		}
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.AddMatchOption(p.Option))
	case "removeMatchOption":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.RemoveMatchOption(p.Index))
	case "setMatchOption":
		var p answerTextPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		finish(session.SetMatchOption(p.Index, p.Text, p.Commit))

	default:
		fail("unsupported message type")
	}
}

func snapshotMessage(session *editor.Session) outboundMessage[any] {
	lesson, slide, element := session.Selection()
	return outboundMessage[any]{Type: "course", Payload: snapshotPayload{
		Course:        session.Course(),
		ActiveLesson:  lesson,
		ActiveSlide:   slide,
		ActiveElement: element,
		CanUndo:       session.CanUndo(),
		CanRedo:       session.CanRedo(),
	}}
}
