package dimigo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"babnet-backend/lib/fetchutil"
	"babnet-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const listingPage = `
<html><body>
<div class="scContent">
<table><tbody>
<tr>
  <td>1</td>
  <td class="scEllipsis"><a href="/index.php?mid=school_cafeteria&document_srl=55">10월 2일 식단</a></td>
  <td>관리자</td>
  <td>123</td>
  <td>2024-09-28</td>
</tr>
<tr>
  <td>2</td>
  <td class="scEllipsis"><a href="/index.php?mid=school_cafeteria&document_srl=56">가정통신문 안내</a></td>
  <td>관리자</td>
  <td>99</td>
  <td>2024-09-27</td>
</tr>
<tr>
  <td>3</td>
  <td class="scEllipsis"><a href="/index.php?mid=school_cafeteria">10월 3일 식단</a></td>
  <td>관리자</td>
  <td>12</td>
  <td>2024-09-28</td>
</tr>
</tbody></table>
</div>
</body></html>`

const postingPage = `
<html><body>
<div class="xe_content">
<p>*조식: 밥/김치</p>
<p>&lt;간편식&gt; 샌드위치</p>
<p>*중식: 국수/단무지</p>
<p>*석식: 탕수육(소스/튀김)</p>
<img src="/files/breakfast.jpg" alt="조식 사진">
<img src="/files/lunch.jpg" alt="중식 사진">
</div>
</body></html>`

func testClient(t *testing.T, serverUrl string) *Client {
	client, err := NewClient(Options{
		BaseUrl:   serverUrl + "/index.php",
		BoardPath: "school_cafeteria",
		PageStart: 1,
		PageEnd:   1,
	}, fetchutil.Options{
		Timeout:   time.Second * 5,
		Retries:   0,
		BaseDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestFetchMenuPosts(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/dimigo")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "school_cafeteria", r.URL.Query().Get("mid"))
		fmt.Fprint(w, listingPage)
	}))
	defer server.Close()

	posts, err := testClient(t, server.URL).FetchMenuPosts(context.Background())
	require.NoError(t, err)

	// the non-menu row and the row without a document id are skipped
	require.Len(t, posts, 1)
	require.Equal(t, "55", posts[0].DocumentId)
	require.Equal(t, "10월 2일 식단", posts[0].Title)
	require.Equal(t, "2024-10-02", posts[0].Date)
	require.Equal(t, "2024-09-28", posts[0].RegistrationDate)
}

func TestFetchMenuPostsPropagatesFetchFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/dimigo")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).FetchMenuPosts(context.Background())
	var serr *fetchutil.StatusError
	require.ErrorAs(t, err, &serr)
}

func TestFetchPosting(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/dimigo")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "55", r.URL.Query().Get("document_srl"))
		fmt.Fprint(w, postingPage)
	}))
	defer server.Close()

	data, err := testClient(t, server.URL).FetchPosting(context.Background(), "55")
	require.NoError(t, err)

	require.Equal(t, []string{"밥", "김치"}, data.Breakfast.Regular)
	require.Equal(t, []string{"샌드위치"}, data.Breakfast.Simple)
	require.Equal(t, []string{"국수", "단무지"}, data.Lunch.Regular)
	require.Equal(t, []string{"탕수육(소스/튀김)"}, data.Dinner.Regular)

	require.Equal(t, server.URL+"/files/breakfast.jpg", data.Breakfast.Image)
	require.Equal(t, server.URL+"/files/lunch.jpg", data.Lunch.Image)
	require.Empty(t, data.Dinner.Image)
}

func TestFetchPostingEmptyContent(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/dimigo")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="xe_content"><p>방학 안내</p></div></body></html>`)
	}))
	defer server.Close()

	data, err := testClient(t, server.URL).FetchPosting(context.Background(), "70")
	require.NoError(t, err)
	require.True(t, data.Empty())
}
