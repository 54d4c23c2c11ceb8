package domain

// PostSorting selects the order of a post listing.
type PostSorting string

const (
	SortNew       PostSorting = "new"
	SortOld       PostSorting = "old"
	SortMostLikes PostSorting = "most_likes"
)

// Valid reports whether s is one of the known sort policies.
func (s PostSorting) Valid() bool {
	switch s {
	case SortNew, SortOld, SortMostLikes:
		return true
	}
	return false
}

// Post is a user authored message.
type Post struct {
	ID     int64
	Body   string
	UserID int64
}

// PostWithLikes is a post together with the number of likes it has received.
type PostWithLikes struct {
	Post
	Likes int64
}

// Comment belongs to exactly one post.
type Comment struct {
	ID     int64
	Body   string
	PostID int64
	UserID int64
}

// Like records a single like by a user. A user may like the same post more
// than once; every row counts.
type Like struct {
	ID     int64
	PostID int64
	UserID int64
}

// PostWithComments is a post, its like count and all of its comments.
type PostWithComments struct {
	Post     PostWithLikes
	Comments []Comment
}
